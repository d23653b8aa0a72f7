package chat

import (
	"encoding/json"
	"time"

	"group-chat/domain"

	"github.com/samber/lo"
)

// Envelope types exchanged over a connection. No other types exist.
const (
	EventTypeMessage = "message"
	EventTypeHistory = "history"
)

// InboundEvent is the tagged shape a client may send. Anything that does
// not parse into it is ignored for that single event.
type InboundEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ParseInbound decodes a raw frame into a tagged event. Malformed or
// untagged frames report ok=false and are dropped by the router; parsing
// never fails hard, so a bad frame cannot tear down a connection handler.
func ParseInbound(raw []byte) (InboundEvent, bool) {
	var event InboundEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return InboundEvent{}, false
	}
	if event.Type == "" {
		return InboundEvent{}, false
	}
	return event, true
}

// WireMessage is the client-facing shape of a stored message.
type WireMessage struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryEnvelope carries the replay snapshot, oldest first.
type HistoryEnvelope struct {
	Type     string        `json:"type"`
	Messages []WireMessage `json:"messages"`
}

// MessageEnvelope carries one broadcast message.
type MessageEnvelope struct {
	Type    string      `json:"type"`
	Message WireMessage `json:"message"`
}

func NewHistoryEnvelope(messages []domain.Message) HistoryEnvelope {
	// Non-nil slice so an empty history marshals as [] and not null.
	wire := make([]WireMessage, 0, len(messages))
	for _, msg := range messages {
		wire = append(wire, toWire(msg))
	}
	return HistoryEnvelope{Type: EventTypeHistory, Messages: wire}
}

func NewMessageEnvelope(msg domain.Message) MessageEnvelope {
	return MessageEnvelope{Type: EventTypeMessage, Message: toWire(msg)}
}

func toWire(msg domain.Message) WireMessage {
	return WireMessage{
		ID:        msg.ID.String(),
		UserID:    msg.UserID,
		Username:  msg.Username,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

// ToWireMessages converts a batch, keeping order.
func ToWireMessages(messages []domain.Message) []WireMessage {
	return lo.Map(messages, func(msg domain.Message, _ int) WireMessage {
		return toWire(msg)
	})
}
