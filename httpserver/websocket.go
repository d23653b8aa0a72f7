package httpserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"group-chat/chat"
	"group-chat/domain"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size. Content caps at 1000 runes, so this
	// leaves generous headroom for the envelope and multi-byte text.
	maxFrameSize = 8192
)

var errSendBufferFull = stderrors.New("connection send buffer full")

// client owns one websocket connection. Deliver never blocks the
// broadcaster: frames land in a buffered channel drained by writePump,
// and a full buffer surfaces as a delivery error for that recipient only.
type client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, bufferSize int) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

func (c *client) Deliver(payload []byte) error {
	select {
	case <-c.done:
		return stderrors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		return errSendBufferFull
	}
}

// close tears the connection down. The send channel is never closed;
// writePump exits on done instead, so a concurrent Deliver cannot panic.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// handleWS is the connection lifecycle: upgrade, admit, replay history,
// then pump frames both ways until either side hangs up. A rejected
// connection is closed without any payload ever written.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	groupID := domain.GroupID(r.URL.Query().Get("groupId"))

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	cl := newClient(conn, s.sendBufferSize)

	session, history, err := s.chat.Join(token, groupID, cl)
	if err != nil {
		s.log.Warn("Connection rejected", "error", err)
		cl.close()
		return
	}
	defer func() {
		s.chat.Leave(session.Handle)
		cl.close()
		s.log.Info("Session closed", "username", session.Username, "group_id", session.GroupID)
	}()

	s.log.Info("Session admitted", "username", session.Username, "group_id", session.GroupID)

	// History goes out on the bare connection before writePump starts.
	// Broadcasts racing the replay sit in the send buffer and flush after,
	// so the client always reads history first.
	payload, err := json.Marshal(chat.NewHistoryEnvelope(history))
	if err != nil {
		s.log.Error("History envelope encoding failed", "error", err)
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return
	}

	go cl.writePump()
	s.readPump(r.Context(), cl, session)
}

func (s *Server) readPump(ctx context.Context, cl *client, session domain.Session) {
	cl.conn.SetReadLimit(maxFrameSize)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("Unexpected connection close", "username", session.Username, "error", err)
			}
			return
		}
		if err := s.chat.Post(ctx, session, raw); err != nil {
			return
		}
	}
}
