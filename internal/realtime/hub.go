package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/logging"
)

const defaultSendBuffer = 32

var ErrUnknownConnection = errors.New("unknown connection")

// Relay carries room frames between API instances. Every instance,
// including the publisher, delivers relayed frames to its local members.
type Relay interface {
	Publish(ctx context.Context, room string, origin Origin, payload []byte) error
}

// Origin names the connection a mutation came from and the user who made
// it. The connection is skipped on fan-out only when it belongs to User,
// so a caller cannot silence someone else's connection.
type Origin struct {
	Connection string
	User       string
}

func (o Origin) excludes(c *Client) bool {
	return o.Connection != "" && o.Connection == c.ID && o.User == c.UserID
}

// Client is one live connection. Frames queue on send until the writer
// drains them.
type Client struct {
	ID     string
	UserID string
	send   chan []byte
}

func NewClient(userID string, buffer int) *Client {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		send:   make(chan []byte, buffer),
	}
}

// Send yields queued frames; it is closed when the hub drops the client.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Hub is the room registry: room id to the set of member connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	joined  map[string]map[string]struct{}
	relay   Relay

	delivered   atomic.Int64
	dropped     atomic.Int64
	relayErrors atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		joined:  make(map[string]map[string]struct{}),
	}
}

// SetRelay routes publications through r instead of delivering in process.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	h.joined[c.ID] = make(map[string]struct{})
}

// Join adds a registered connection to room. Joining twice is a no-op.
func (h *Hub) Join(connID, room string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return ErrUnknownConnection
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[connID] = c
	h.joined[connID][room] = struct{}{}
	return nil
}

func (h *Hub) Leave(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(connID, room)
}

// Disconnect removes the connection from every room and closes its queue.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connID]
	if !ok {
		return
	}
	for room := range h.joined[connID] {
		h.leaveLocked(connID, room)
	}
	delete(h.joined, connID)
	delete(h.clients, connID)
	close(c.send)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Disconnect(id)
	}
}

func (h *Hub) leaveLocked(connID, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.joined[connID]; ok {
		delete(rooms, room)
	}
}

// Publish sends ev to the room of ev.Project, skipping the origin
// connection. It never waits for delivery.
func (h *Hub) Publish(ctx context.Context, origin Origin, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.FromContext(ctx).Error("realtime.publish", err)
		return
	}

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay == nil {
		h.Deliver(ev.Project, origin, payload)
		return
	}

	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := relay.Publish(rctx, ev.Project, origin, payload); err != nil {
			h.relayErrors.Add(1)
			logging.FromContext(ctx).Errorf("realtime.relay", "room=%s error=%v", ev.Project, err)
			h.Deliver(ev.Project, origin, payload)
		}
	}()
}

// Deliver queues payload on every local member of room except origin. A
// member whose queue is full loses this frame. It returns the number of
// members the frame was queued for.
func (h *Hub) Deliver(room string, origin Origin, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, c := range h.rooms[room] {
		if origin.excludes(c) {
			continue
		}
		select {
		case c.send <- payload:
			n++
			h.delivered.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
	return n
}

// reply queues a control frame for a single connection.
func (h *Hub) reply(connID string, f frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) StatsSnapshot() map[string]int64 {
	h.mu.RLock()
	connections, rooms := len(h.clients), len(h.rooms)
	h.mu.RUnlock()

	return map[string]int64{
		"connections":  int64(connections),
		"rooms":        int64(rooms),
		"delivered":    h.delivered.Load(),
		"dropped":      h.dropped.Load(),
		"relay_errors": h.relayErrors.Load(),
	}
}
