package transport

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"quiz-relay/domain/event"
)

// Client is one websocket connection with its outbound pump. Writes go
// through a buffered channel; a full buffer drops the frame for this client
// only, so a slow consumer never stalls a broadcast.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan outboundFrame
	log  *slog.Logger

	mu     sync.Mutex
	closed bool
}

func newClient(id string, conn *websocket.Conn, bufferSize int, log *slog.Logger) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan outboundFrame, bufferSize),
		log:  log,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) enqueue(e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- outboundFrame{Event: e.Name(), Data: e}:
	default:
		c.log.Warn("Connection buffer full, dropping frame",
			"connection", c.id, "event", e.Name())
	}
}

// close makes further enqueues no-ops and lets the write pump drain and exit.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump serializes all writes to the socket. It exits when close() is
// called and the buffer is drained, then tears the socket down, which also
// unblocks the read loop.
func (c *Client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for frame := range c.send {
		if err := c.conn.WriteJSON(frame); err != nil {
			c.log.Debug("Write failed, closing connection", "connection", c.id, "err", err)
			return
		}
	}
}
