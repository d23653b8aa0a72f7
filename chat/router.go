package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	"group-chat/contract"
	"group-chat/domain"
)

// inbound is one raw frame read from a connection, paired with the
// session that emitted it.
type inbound struct {
	session domain.Session
	raw     []byte
}

// Router fans inbound chat events out to every live connection of the
// sending session's group. It runs as a supervised worker consuming an
// ordered inbox: one event is processed to completion (persist, index,
// snapshot, deliver) before the next one starts, even across different
// connections, so two broadcasts never interleave within a group.
type Router struct {
	log      *slog.Logger
	store    contract.IMessageStore
	index    contract.IMessageIndex
	registry contract.IRegistry
	inbox    chan inbound
}

func NewRouter(log *slog.Logger, store contract.IMessageStore, index contract.IMessageIndex,
	registry contract.IRegistry, bufferSize int) *Router {
	return &Router{
		log:      log,
		store:    store,
		index:    index,
		registry: registry,
		inbox:    make(chan inbound, bufferSize),
	}
}

// Enqueue hands one raw frame to the router. It blocks when the inbox is
// full, which keeps per-connection reads sequential instead of dropping
// messages under load.
func (r *Router) Enqueue(ctx context.Context, session domain.Session, raw []byte) error {
	select {
	case r.inbox <- inbound{session: session, raw: raw}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Router) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.log.Debug("Context done, stopping router")
			return nil
		case evt := <-r.inbox:
			r.process(evt)
		}
	}
}

// process drives one event through the full pipeline. Every failure mode
// is connection-local or message-local: nothing here may panic the worker
// or close the sending connection.
func (r *Router) process(evt inbound) {
	event, ok := ParseInbound(evt.raw)
	if !ok {
		r.log.Debug("Ignoring malformed inbound event", "user_id", evt.session.UserID)
		return
	}
	if event.Type != EventTypeMessage {
		r.log.Debug("Ignoring unknown event type", "type", event.Type)
		return
	}

	content, err := domain.NormalizeContent(event.Content)
	if err != nil {
		r.log.Warn("Dropping invalid message content",
			"user_id", evt.session.UserID, "error", err)
		return
	}

	msg, err := r.store.Create(evt.session.UserID, evt.session.Username, evt.session.GroupID, content)
	if err != nil {
		// The message is lost for this attempt: no broadcast, and the
		// sender gets no signal. Known protocol gap.
		r.log.Error("Message persistence failed, dropping event",
			"user_id", evt.session.UserID, "group_id", evt.session.GroupID, "error", err)
		return
	}

	if err := r.index.Index(msg); err != nil {
		r.log.Warn("Message indexing failed", "message_id", msg.ID, "error", err)
	}

	payload, err := json.Marshal(NewMessageEnvelope(msg))
	if err != nil {
		r.log.Error("Envelope marshaling failed", "message_id", msg.ID, "error", err)
		return
	}

	// Delivery set is computed now, from the live registry, never from an
	// earlier snapshot. Best effort per recipient.
	for _, entry := range r.registry.SnapshotForGroup(evt.session.GroupID) {
		if err := entry.Sink.Deliver(payload); err != nil {
			r.log.Debug("Skipping unreachable recipient",
				"handle", entry.Session.Handle, "error", err)
		}
	}
}
