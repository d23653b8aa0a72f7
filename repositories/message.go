//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"group-chat/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	Create(userID, username string, groupID domain.GroupID, content string) (domain.Message, error)
	RecentByGroup(groupID domain.GroupID, limit int) ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

// diskMessage is the stored shape of a message.
type diskMessage struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	GroupID  string `json:"group_id"`
	Content  string `json:"content"`
	At       int64  `json:"at"` // unix nanoseconds, UTC
}

// messageKey formats keys as "msg:{group_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func messageKey(groupID domain.GroupID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", groupID, at.UnixNano(), id))
}

// Create assigns the identifier and timestamp and persists the message.
// Content is assumed already normalized by the caller.
func (m *MessageRepository) Create(userID, username string, groupID domain.GroupID, content string) (domain.Message, error) {
	msg := domain.Message{
		ID:        uuid.New(),
		UserID:    userID,
		Username:  username,
		GroupID:   groupID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	bytes, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return domain.Message{}, err
	}

	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(groupID, msg.CreatedAt, msg.ID), bytes)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// RecentByGroup retrieves the newest messages of a group, newest first.
// Thanks to the padded timestamp in the key, a reverse prefix scan walks
// messages from the most recent backwards. An empty group yields an empty
// slice, not an error.
func (m *MessageRepository) RecentByGroup(groupID domain.GroupID, limit int) ([]domain.Message, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", groupID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the last possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(byteMessages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte{}, value...))
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

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var dm diskMessage
		if err = json.Unmarshal(b, &dm); err != nil {
			return nil, err
		}
		msg, err := toMessage(dm)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		ID:       msg.ID.String(),
		UserID:   msg.UserID,
		Username: msg.Username,
		GroupID:  string(msg.GroupID),
		Content:  msg.Content,
		At:       msg.CreatedAt.UnixNano(),
	}
}

func toMessage(dm diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(dm.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		UserID:    dm.UserID,
		Username:  dm.Username,
		GroupID:   domain.GroupID(dm.GroupID),
		Content:   dm.Content,
		CreatedAt: time.Unix(0, dm.At).UTC(),
	}, nil
}
