package services

import (
	"context"

	"group-chat/chat"
	"group-chat/contract"
	"group-chat/domain"
	"group-chat/errors"
)

type IChatService interface {
	Join(token string, groupID domain.GroupID, sink contract.Sink) (domain.Session, []domain.Message, error)
	Leave(handle domain.Handle)
	Post(ctx context.Context, session domain.Session, raw []byte) error
	Search(ctx context.Context, groupID domain.GroupID, userID, query string) ([]domain.Message, error)
}

// ChatService wires the admission gate, the registry, the history loader
// and the router into the connection lifecycle the transport drives.
type ChatService struct {
	gate        *chat.Gate
	registry    *chat.Registry
	history     *chat.HistoryLoader
	router      *chat.Router
	membership  contract.IMembership
	index       contract.IMessageIndex
	searchLimit int
}

func NewChatService(gate *chat.Gate, registry *chat.Registry, history *chat.HistoryLoader,
	router *chat.Router, membership contract.IMembership, index contract.IMessageIndex,
	searchLimit int) *ChatService {
	return &ChatService{
		gate:        gate,
		registry:    registry,
		history:     history,
		router:      router,
		membership:  membership,
		index:       index,
		searchLimit: searchLimit,
	}
}

// Join admits the connection, registers it and loads the replay snapshot,
// in that order. Live broadcasts may already land in the sink while
// history loads; the transport flushes the sink only after writing the
// history envelope, so the client still reads history first.
func (s *ChatService) Join(token string, groupID domain.GroupID, sink contract.Sink) (domain.Session, []domain.Message, error) {
	session, err := s.gate.Admit(token, groupID)
	if err != nil {
		return domain.Session{}, nil, err
	}

	if err := s.registry.Insert(session.Handle, session, sink); err != nil {
		return domain.Session{}, nil, err
	}

	history, err := s.history.LoadHistory(groupID)
	if err != nil {
		// Never leave a half-joined connection deliverable.
		s.registry.Remove(session.Handle)
		return domain.Session{}, nil, err
	}

	return session, history, nil
}

// Leave evicts the connection. Safe to call more than once.
func (s *ChatService) Leave(handle domain.Handle) {
	s.registry.Remove(handle)
}

// Post hands one raw inbound frame to the router's ordered inbox.
func (s *ChatService) Post(ctx context.Context, session domain.Session, raw []byte) error {
	return s.router.Enqueue(ctx, session, raw)
}

// Search runs a full-text query over one group's messages, gated on the
// caller's membership the same way a connection attempt is.
func (s *ChatService) Search(ctx context.Context, groupID domain.GroupID, userID, query string) ([]domain.Message, error) {
	member, err := s.membership.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errors.ErrNotAMember
	}
	return s.index.SearchByGroup(ctx, groupID, query, s.searchLimit)
}
