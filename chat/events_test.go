package chat

import (
	"encoding/json"
	"testing"
	"time"

	"group-chat/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	t.Run("should parse a tagged message event", func(t *testing.T) {
		req := require.New(t)

		event, ok := ParseInbound([]byte(`{"type":"message","content":"hello"}`))

		req.True(ok)
		req.Equal(EventTypeMessage, event.Type)
		req.Equal("hello", event.Content)
	})

	t.Run("should reject invalid JSON", func(t *testing.T) {
		req := require.New(t)

		_, ok := ParseInbound([]byte(`{"type":`))

		req.False(ok)
	})

	t.Run("should reject a frame without a type tag", func(t *testing.T) {
		req := require.New(t)

		_, ok := ParseInbound([]byte(`{"content":"hello"}`))

		req.False(ok)
	})

	t.Run("should keep an unknown type for the router to ignore", func(t *testing.T) {
		req := require.New(t)

		event, ok := ParseInbound([]byte(`{"type":"typing"}`))

		req.True(ok)
		req.Equal("typing", event.Type)
	})
}

func TestEnvelopes(t *testing.T) {
	msg := domain.Message{
		ID:        uuid.MustParse("6d1b5e63-6a53-4e2b-9f37-0a5f2b12c001"),
		UserID:    "user-1",
		Username:  "alice",
		GroupID:   "g1",
		Content:   "hello",
		CreatedAt: time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC),
	}

	t.Run("should marshal a message envelope with the exact wire keys", func(t *testing.T) {
		req := require.New(t)

		payload, err := json.Marshal(NewMessageEnvelope(msg))
		req.NoError(err)

		var decoded map[string]any
		req.NoError(json.Unmarshal(payload, &decoded))
		req.Equal("message", decoded["type"])

		wire, ok := decoded["message"].(map[string]any)
		req.True(ok)
		req.Equal("6d1b5e63-6a53-4e2b-9f37-0a5f2b12c001", wire["_id"])
		req.Equal("user-1", wire["user_id"])
		req.Equal("alice", wire["username"])
		req.Equal("hello", wire["content"])
		req.Equal("2026-02-03T10:30:00Z", wire["created_at"])
		// No group id on the wire: the connection is already scoped.
		req.NotContains(wire, "group_id")
	})

	t.Run("should marshal history messages oldest-first as given", func(t *testing.T) {
		req := require.New(t)

		second := msg
		second.ID = uuid.New()
		second.Content = "world"

		payload, err := json.Marshal(NewHistoryEnvelope([]domain.Message{msg, second}))
		req.NoError(err)

		var decoded HistoryEnvelope
		req.NoError(json.Unmarshal(payload, &decoded))
		req.Equal(EventTypeHistory, decoded.Type)
		req.Len(decoded.Messages, 2)
		req.Equal("hello", decoded.Messages[0].Content)
		req.Equal("world", decoded.Messages[1].Content)
	})

	t.Run("should marshal an empty history as an empty array", func(t *testing.T) {
		req := require.New(t)

		payload, err := json.Marshal(NewHistoryEnvelope(nil))
		req.NoError(err)
		req.JSONEq(`{"type":"history","messages":[]}`, string(payload))
	})
}
