package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"group-chat/domain"
	"group-chat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type captureSink struct {
	payloads [][]byte
	err      error
}

func (c *captureSink) Deliver(payload []byte) error {
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func registered(t *testing.T, registry *Registry, handle string, groupID domain.GroupID) (*captureSink, domain.Session) {
	t.Helper()
	sink := &captureSink{}
	session := sessionFor(handle, groupID)
	require.NoError(t, registry.Insert(session.Handle, session, sink))
	return sink, session
}

func TestRouterProcess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	newFixture := func(t *testing.T) (*Router, *mocks.MockIMessageStore, *mocks.MockIMessageIndex, *Registry) {
		ctrl := gomock.NewController(t)
		store := mocks.NewMockIMessageStore(ctrl)
		index := mocks.NewMockIMessageIndex(ctrl)
		registry := NewRegistry()
		return NewRouter(logger, store, index, registry, 16), store, index, registry
	}

	stored := func(session domain.Session, content string) domain.Message {
		return domain.Message{
			ID:        uuid.New(),
			UserID:    session.UserID,
			Username:  session.Username,
			GroupID:   session.GroupID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
	}

	t.Run("should deliver exactly once to each member of the group", func(t *testing.T) {
		req := require.New(t)
		router, store, index, registry := newFixture(t)

		sinkA, sender := registered(t, registry, "a", "g1")
		sinkB, _ := registered(t, registry, "b", "g1")
		sinkOther, _ := registered(t, registry, "c", "g2")

		msg := stored(sender, "hello")
		store.EXPECT().Create(sender.UserID, sender.Username, sender.GroupID, "hello").Return(msg, nil)
		index.EXPECT().Index(msg).Return(nil)

		router.process(inbound{session: sender, raw: []byte(`{"type":"message","content":"hello"}`)})

		// Sender included, other group untouched.
		req.Len(sinkA.payloads, 1)
		req.Len(sinkB.payloads, 1)
		req.Empty(sinkOther.payloads)

		var envelope MessageEnvelope
		req.NoError(json.Unmarshal(sinkA.payloads[0], &envelope))
		req.Equal(EventTypeMessage, envelope.Type)
		req.Equal("hello", envelope.Message.Content)
		req.Equal(msg.ID.String(), envelope.Message.ID)
	})

	t.Run("should trim content before persisting", func(t *testing.T) {
		req := require.New(t)
		router, store, index, registry := newFixture(t)

		sink, sender := registered(t, registry, "a", "g1")

		msg := stored(sender, "hello")
		store.EXPECT().Create(sender.UserID, sender.Username, sender.GroupID, "hello").Return(msg, nil)
		index.EXPECT().Index(msg).Return(nil)

		router.process(inbound{session: sender, raw: []byte(`{"type":"message","content":"  hello  "}`)})

		req.Len(sink.payloads, 1)
	})

	t.Run("should ignore a malformed frame silently", func(t *testing.T) {
		req := require.New(t)
		router, store, _, registry := newFixture(t)

		sink, sender := registered(t, registry, "a", "g1")
		store.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		router.process(inbound{session: sender, raw: []byte(`this is not json`)})

		req.Empty(sink.payloads)
	})

	t.Run("should ignore an unknown event type", func(t *testing.T) {
		req := require.New(t)
		router, store, _, registry := newFixture(t)

		sink, sender := registered(t, registry, "a", "g1")
		store.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		router.process(inbound{session: sender, raw: []byte(`{"type":"typing","content":"x"}`)})

		req.Empty(sink.payloads)
	})

	t.Run("should drop empty content without persisting", func(t *testing.T) {
		req := require.New(t)
		router, store, _, registry := newFixture(t)

		sink, sender := registered(t, registry, "a", "g1")
		store.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		router.process(inbound{session: sender, raw: []byte(`{"type":"message","content":"   "}`)})

		req.Empty(sink.payloads)
	})

	t.Run("should drop over-length content without persisting", func(t *testing.T) {
		req := require.New(t)
		router, store, _, registry := newFixture(t)

		sink, sender := registered(t, registry, "a", "g1")
		store.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		frame := fmt.Sprintf(`{"type":"message","content":"%s"}`,
			strings.Repeat("a", domain.MaxContentLength+1))
		router.process(inbound{session: sender, raw: []byte(frame)})

		req.Empty(sink.payloads)
	})

	t.Run("should not broadcast when persistence fails", func(t *testing.T) {
		req := require.New(t)
		router, store, index, registry := newFixture(t)

		sinkA, sender := registered(t, registry, "a", "g1")
		sinkB, _ := registered(t, registry, "b", "g1")

		store.EXPECT().Create(sender.UserID, sender.Username, sender.GroupID, "hello").
			Return(domain.Message{}, fmt.Errorf("disk on fire"))
		index.EXPECT().Index(gomock.Any()).Times(0)

		router.process(inbound{session: sender, raw: []byte(`{"type":"message","content":"hello"}`)})

		req.Empty(sinkA.payloads)
		req.Empty(sinkB.payloads)
	})

	t.Run("should broadcast even when indexing fails", func(t *testing.T) {
		req := require.New(t)
		router, store, index, registry := newFixture(t)

		sink, sender := registered(t, registry, "a", "g1")

		msg := stored(sender, "hello")
		store.EXPECT().Create(sender.UserID, sender.Username, sender.GroupID, "hello").Return(msg, nil)
		index.EXPECT().Index(msg).Return(fmt.Errorf("index unavailable"))

		router.process(inbound{session: sender, raw: []byte(`{"type":"message","content":"hello"}`)})

		req.Len(sink.payloads, 1)
	})

	t.Run("should keep delivering past a failing recipient", func(t *testing.T) {
		req := require.New(t)
		router, store, index, registry := newFixture(t)

		broken := &captureSink{err: fmt.Errorf("buffer full")}
		brokenSession := sessionFor("a", "g1")
		req.NoError(registry.Insert(brokenSession.Handle, brokenSession, broken))
		healthy, sender := registered(t, registry, "b", "g1")

		msg := stored(sender, "hello")
		store.EXPECT().Create(sender.UserID, sender.Username, sender.GroupID, "hello").Return(msg, nil)
		index.EXPECT().Index(msg).Return(nil)

		router.process(inbound{session: sender, raw: []byte(`{"type":"message","content":"hello"}`)})

		req.Len(healthy.payloads, 1)
	})
}

func TestRouterRun(t *testing.T) {
	req := require.New(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctrl := gomock.NewController(t)
	store := mocks.NewMockIMessageStore(ctrl)
	index := mocks.NewMockIMessageIndex(ctrl)
	registry := NewRegistry()
	router := NewRouter(logger, store, index, registry, 16)

	delivered := make(chan []byte, 8)
	session := sessionFor("a", "g1")
	req.NoError(registry.Insert(session.Handle, session, sinkFunc(func(p []byte) error {
		delivered <- p
		return nil
	})))

	// Stored order follows processing order: the router drains its inbox
	// one event at a time.
	gomock.InOrder(
		store.EXPECT().Create(session.UserID, session.Username, session.GroupID, "first").
			Return(domain.Message{ID: uuid.New(), Content: "first", GroupID: "g1"}, nil),
		store.EXPECT().Create(session.UserID, session.Username, session.GroupID, "second").
			Return(domain.Message{ID: uuid.New(), Content: "second", GroupID: "g1"}, nil),
	)
	index.EXPECT().Index(gomock.Any()).Return(nil).Times(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = router.Run(ctx)
		close(done)
	}()

	req.NoError(router.Enqueue(ctx, session, []byte(`{"type":"message","content":"first"}`)))
	req.NoError(router.Enqueue(ctx, session, []byte(`{"type":"message","content":"second"}`)))

	var contents []string
	for i := 0; i < 2; i++ {
		select {
		case payload := <-delivered:
			var envelope MessageEnvelope
			req.NoError(json.Unmarshal(payload, &envelope))
			contents = append(contents, envelope.Message.Content)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
	req.Equal([]string{"first", "second"}, contents)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("router did not stop on context cancellation")
	}
}

type sinkFunc func([]byte) error

func (f sinkFunc) Deliver(payload []byte) error { return f(payload) }
