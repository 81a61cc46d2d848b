package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"quiz-relay/contract"
	"quiz-relay/domain"
	"quiz-relay/domain/event"
)

// Ensure the Hub satisfies the capability the dispatcher is wired against.
var _ contract.ConnectionSender = (*Hub)(nil)

// Hub owns the live websocket connections. It upgrades HTTP requests, mints
// connection IDs, feeds decoded frames into the submitter, and implements
// the dispatcher's send/broadcast primitives. Room membership itself lives in
// the registry; the hub only resolves members to sockets at broadcast time.
type Hub struct {
	mu         sync.RWMutex
	log        *slog.Logger
	upgrader   websocket.Upgrader
	clients    map[string]*Client
	registry   contract.IRegistry
	submitter  contract.Submitter
	bufferSize int
}

func NewHub(log *slog.Logger, registry contract.IRegistry, submitter contract.Submitter, connectionBufferSize int) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			// Origin policy is enforced by the CORS layer in front of
			// the router.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[string]*Client),
		registry:   registry,
		submitter:  submitter,
		bufferSize: connectionBufferSize,
	}
}

// HandleWS upgrades the request and runs the connection until it dies. The
// disconnect command is synthesized exactly once per connection, whatever
// killed the read loop.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "err", err)
		return
	}

	client := newClient(uuid.NewString(), conn, h.bufferSize, h.log)
	h.register(client)
	h.log.Debug("Connection opened", "connection", client.ID())

	go client.writePump()
	h.readLoop(client)

	h.unregister(client)
	h.submitter.Submit(domain.DisconnectCommand{Conn: client.ID()})
	h.log.Debug("Connection closed", "connection", client.ID())
}

func (h *Hub) readLoop(client *Client) {
	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		cmd, err := DecodeCommand(client.ID(), raw)
		if err != nil {
			h.log.Debug("Dropping undecodable frame", "connection", client.ID(), "err", err)
			client.enqueue(event.Error{Message: err.Error()})
			continue
		}
		h.submitter.Submit(cmd)
	}
}

// SendTo delivers one event to one connection. An unknown connection is an
// error; a full buffer is not, the frame is just dropped for that client.
func (h *Hub) SendTo(connectionID string, e event.Event) error {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no connection %s", connectionID)
	}
	client.enqueue(e)
	return nil
}

// BroadcastToRoom fans the event out to every current member of the room,
// minus the excluded connections. Delivery is independent per recipient.
func (h *Hub) BroadcastToRoom(roomID domain.RoomID, e event.Event, exclude ...string) {
	members := h.registry.Participants(roomID)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, member := range members {
		if lo.Contains(exclude, member.ConnectionID) {
			continue
		}
		client, ok := h.clients[member.ConnectionID]
		if !ok {
			// Member raced a disconnect; the registry cleanup is in
			// flight.
			continue
		}
		client.enqueue(e)
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID()] = client
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client.ID())
	h.mu.Unlock()
	client.close()
}
