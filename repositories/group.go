//go:generate go run go.uber.org/mock/mockgen -source=group.go -destination=../mocks/mock_group_repository.go -package=mocks
package repositories

import (
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"sort"
	"time"

	"group-chat/domain"
	"group-chat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IGroupRepository interface {
	CreateGroup(name, creatorID string) (domain.Group, error)
	GetGroup(id domain.GroupID) (domain.Group, error)
	JoinGroup(code, userID string) (domain.Group, error)
	GroupsForUser(userID string) ([]domain.Group, error)
	IsMember(groupID domain.GroupID, userID string) (bool, error)
}

// codeAlphabet mirrors the invite codes users share out loud: six upper
// alphanumerics, no lookalike exclusions.
const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// errCodeTaken stays internal to the create/retry loop.
var errCodeTaken = stderrors.New("invite code already in use")

type GroupRepository struct {
	db *badger.DB
}

func NewGroupRepository(db *badger.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

type diskGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Code      string   `json:"code"`
	Members   []string `json:"members"`
	CreatedBy string   `json:"created_by"`
	CreatedAt int64    `json:"created_at"`
}

func groupKey(id domain.GroupID) []byte {
	return []byte("group:" + string(id))
}

// codeKey is the secondary key resolving an invite code to a group id.
func codeKey(code string) []byte {
	return []byte("gcode:" + code)
}

// CreateGroup persists a new group with a fresh invite code. The creator
// becomes the first member. Code uniqueness is enforced inside the
// transaction; a collision retries with a new code.
func (g *GroupRepository) CreateGroup(name, creatorID string) (domain.Group, error) {
	group := domain.Group{
		ID:        domain.GroupID(uuid.New().String()),
		Name:      name,
		Members:   []string{creatorID},
		CreatedBy: creatorID,
		CreatedAt: time.Now().UTC(),
	}

	for {
		code, err := generateCode()
		if err != nil {
			return domain.Group{}, err
		}
		group.Code = code

		data, err := json.Marshal(fromGroup(group))
		if err != nil {
			return domain.Group{}, err
		}

		err = g.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(codeKey(code)); err == nil {
				return errCodeTaken
			}
			if err := txn.Set(codeKey(code), []byte(group.ID)); err != nil {
				return err
			}
			return txn.Set(groupKey(group.ID), data)
		})
		if err == nil {
			return group, nil
		}
		if err != errCodeTaken {
			return domain.Group{}, err
		}
		// Code already taken, roll a new one.
	}
}

func (g *GroupRepository) GetGroup(id domain.GroupID) (domain.Group, error) {
	var group domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		found, err := readGroup(txn, id)
		if err != nil {
			return err
		}
		group = found
		return nil
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// JoinGroup resolves the invite code and adds the user to the member set.
// Joining a group twice is a no-op that still returns the group.
func (g *GroupRepository) JoinGroup(code, userID string) (domain.Group, error) {
	var group domain.Group
	err := g.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(codeKey(code))
		if err != nil {
			return err
		}
		var groupID domain.GroupID
		err = item.Value(func(val []byte) error {
			groupID = domain.GroupID(val)
			return nil
		})
		if err != nil {
			return err
		}

		group, err = readGroup(txn, groupID)
		if err != nil {
			return err
		}
		if group.HasMember(userID) {
			return nil
		}

		group.Members = append(group.Members, userID)
		data, err := json.Marshal(fromGroup(group))
		if err != nil {
			return err
		}
		return txn.Set(groupKey(groupID), data)
	})
	if err == badger.ErrKeyNotFound {
		return domain.Group{}, errors.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return group, nil
}

// GroupsForUser scans all groups and keeps the ones the user belongs to,
// newest first. Group counts stay small enough that a prefix scan beats
// maintaining a per-user index.
func (g *GroupRepository) GroupsForUser(userID string) ([]domain.Group, error) {
	var groups []domain.Group
	err := g.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("group:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var dg diskGroup
				if err := json.Unmarshal(val, &dg); err != nil {
					return err
				}
				group := toGroup(dg)
				if group.HasMember(userID) {
					groups = append(groups, group)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	return groups, nil
}

// IsMember reads live membership for the admission gate. An unknown
// group simply reports non-membership.
func (g *GroupRepository) IsMember(groupID domain.GroupID, userID string) (bool, error) {
	group, err := g.GetGroup(groupID)
	if err == errors.ErrGroupNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return group.HasMember(userID), nil
}

func readGroup(txn *badger.Txn, id domain.GroupID) (domain.Group, error) {
	item, err := txn.Get(groupKey(id))
	if err != nil {
		return domain.Group{}, err
	}
	var dg diskGroup
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &dg)
	})
	if err != nil {
		return domain.Group{}, err
	}
	return toGroup(dg), nil
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

func fromGroup(group domain.Group) diskGroup {
	return diskGroup{
		ID:        string(group.ID),
		Name:      group.Name,
		Code:      group.Code,
		Members:   group.Members,
		CreatedBy: group.CreatedBy,
		CreatedAt: group.CreatedAt.UnixNano(),
	}
}

func toGroup(dg diskGroup) domain.Group {
	return domain.Group{
		ID:        domain.GroupID(dg.ID),
		Name:      dg.Name,
		Code:      dg.Code,
		Members:   dg.Members,
		CreatedBy: dg.CreatedBy,
		CreatedAt: time.Unix(0, dg.CreatedAt).UTC(),
	}
}
