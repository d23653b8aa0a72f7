package chat

import (
	"fmt"

	"group-chat/contract"
	"group-chat/domain"
	"group-chat/errors"

	"github.com/google/uuid"
)

// Gate is the one-time admission check a connection passes before joining
// a group's live session set. It fails closed: any missing or invalid
// input yields an error and no state is created anywhere.
type Gate struct {
	tokens     contract.ITokenVerifier
	membership contract.IMembership
}

func NewGate(tokens contract.ITokenVerifier, membership contract.IMembership) *Gate {
	return &Gate{tokens: tokens, membership: membership}
}

// Admit validates the presented token and the user's membership of the
// target group, both re-checked on every attempt since membership can
// change between connections. On success it mints the Session with a
// fresh connection handle.
func (g *Gate) Admit(token string, groupID domain.GroupID) (domain.Session, error) {
	if token == "" || groupID == "" {
		return domain.Session{}, errors.ErrMissingCredentials
	}

	userID, username, err := g.tokens.Verify(token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	member, err := g.membership.IsMember(groupID, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if !member {
		return domain.Session{}, errors.ErrNotAMember
	}

	return domain.Session{
		Handle:   domain.Handle(uuid.NewString()),
		UserID:   userID,
		Username: username,
		GroupID:  groupID,
	}, nil
}
