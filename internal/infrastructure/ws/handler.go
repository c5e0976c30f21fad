// Package ws exposes the live progress feed over websockets. Each connection
// subscribes to exactly one submission and receives its progress events as
// JSON frames.
package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/colinc-deepflow/deepflow-control-center/internal/broadcast"
	"github.com/colinc-deepflow/deepflow-control-center/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 32
)

// Handler upgrades HTTP requests to websocket connections and registers them
// with the broadcaster.
type Handler struct {
	broadcaster *broadcast.Broadcaster
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

// NewHandler builds the websocket handler.
func NewHandler(broadcaster *broadcast.Broadcaster, logger *slog.Logger) *Handler {
	return &Handler{
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and pumps events until the client leaves.
// The submission id comes from the route's {id} segment.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	submissionID := r.PathValue("id")
	if submissionID == "" {
		http.Error(w, "missing submission id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "submission", submissionID, "error", err)
		return
	}

	client := newClient(conn)
	h.broadcaster.Connect(submissionID, client)
	h.logger.Debug("websocket client connected", "submission", submissionID)

	go client.writePump()
	client.readPump()

	h.broadcaster.Disconnect(submissionID, client)
	client.close()
	h.logger.Debug("websocket client disconnected", "submission", submissionID)
}

// client is one live websocket connection. Events are handed over through a
// buffered channel so that a slow consumer never blocks the pipeline; a full
// buffer marks the client dead.
type client struct {
	conn  *websocket.Conn
	send  chan domain.ProgressEvent
	pongs chan struct{}
	done  chan struct{}
}

var _ broadcast.Subscriber = (*client)(nil)

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:  conn,
		send:  make(chan domain.ProgressEvent, sendBufferSize),
		pongs: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Send queues an event for delivery without blocking.
func (c *client) Send(event domain.ProgressEvent) error {
	select {
	case <-c.done:
		return errors.New("client closed")
	case c.send <- event:
		return nil
	default:
		return errors.New("client send buffer full")
	}
}

// readPump consumes client frames until the connection drops. Text frames
// containing "ping" are answered with a pong payload; everything else is
// ignored. The reply goes through writePump so only one goroutine ever
// writes to the connection.
func (c *client) readPump() {
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if strings.TrimSpace(string(payload)) == "ping" {
			select {
			case c.pongs <- struct{}{}:
			default:
			}
		}
	}
}

// writePump serializes queued events and pong replies onto the connection.
func (c *client) writePump() {
	for {
		select {
		case <-c.done:
			return
		case <-c.pongs:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(map[string]string{"type": "pong"}); err != nil {
				return
			}
		case event := <-c.send:
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	close(c.done)
	_ = c.conn.Close()
}
