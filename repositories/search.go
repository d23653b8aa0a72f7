package repositories

import (
	"context"
	"log/slog"
	"time"

	"group-chat/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

// MessageIndex implements contract.IMessageIndex on a bluge full-text
// index over stored messages.
// The index is advisory: losing an entry degrades search results, never
// the chat history itself.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index adds one message to the search index. Content is analyzed; the
// group id is a keyword term so searches never cross groups; identity and
// timestamp fields are stored for rehydration only.
func (x *MessageIndex) Index(msg domain.Message) error {
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField("group_id", string(msg.GroupID)).StoreValue()).
		AddField(bluge.NewStoredOnlyField("user_id", []byte(msg.UserID))).
		AddField(bluge.NewStoredOnlyField("username", []byte(msg.Username))).
		AddField(bluge.NewStoredOnlyField("created_at", []byte(msg.CreatedAt.UTC().Format(time.RFC3339Nano))))

	return x.writer.Update(doc.ID(), doc)
}

// SearchByGroup runs a match query over message content, restricted to a
// single group by a mandatory term clause.
func (x *MessageIndex) SearchByGroup(ctx context.Context, groupID domain.GroupID, query string, limit int) ([]domain.Message, error) {
	reader, err := x.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			x.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(bluge.NewTermQuery(string(groupID)).SetField("group_id"))

	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	results := make([]domain.Message, 0, limit)
	for {
		match, err := dmi.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var msg domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, err := uuid.Parse(string(value)); err == nil {
					msg.ID = id
				}
			case "content":
				msg.Content = string(value)
			case "group_id":
				msg.GroupID = domain.GroupID(value)
			case "user_id":
				msg.UserID = string(value)
			case "username":
				msg.Username = string(value)
			case "created_at":
				if at, err := time.Parse(time.RFC3339Nano, string(value)); err == nil {
					msg.CreatedAt = at
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		results = append(results, msg)
	}
	return results, nil
}
