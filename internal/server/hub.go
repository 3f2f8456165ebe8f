package server

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/quizdash/quizdash/internal/game"
)

// envelope is the wire frame for every message in both directions.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Conn is one player's live connection. Outbound messages are queued on a
// buffered channel drained by the connection's write pump.
type Conn struct {
	PlayerID uuid.UUID
	out      chan envelope
}

// send queues a message without blocking. A full or abandoned queue drops
// the message; the write pump or read pump will notice the dead socket.
func (c *Conn) send(log *logrus.Logger, ev envelope) {
	select {
	case c.out <- ev:
	default:
		log.WithFields(logrus.Fields{
			"player": c.PlayerID,
			"event":  ev.Type,
		}).Warn("outbound queue full, dropping message")
	}
}

// Emitter delivers named events to a single player or to every player in a
// room. The orchestrator depends on this interface only; tests substitute a
// recording implementation.
type Emitter interface {
	ToPlayer(playerID uuid.UUID, event string, payload any)
	ToRoom(roomID uuid.UUID, event string, payload any)
}

// Hub tracks live connections by player id and resolves room broadcasts
// through the registry's membership list.
type Hub struct {
	registry *game.Registry
	log      *logrus.Logger

	mu    sync.Mutex
	conns map[uuid.UUID]*Conn
}

func NewHub(registry *game.Registry, log *logrus.Logger) *Hub {
	return &Hub{
		registry: registry,
		log:      log,
		conns:    make(map[uuid.UUID]*Conn),
	}
}

func (h *Hub) Add(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.PlayerID] = conn
}

func (h *Hub) Remove(playerID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, playerID)
}

// ToPlayer sends one event to a single connection, if it is still live.
func (h *Hub) ToPlayer(playerID uuid.UUID, event string, payload any) {
	h.mu.Lock()
	conn, ok := h.conns[playerID]
	h.mu.Unlock()
	if !ok {
		return
	}
	conn.send(h.log, envelope{Type: event, Data: payload})
}

// ToRoom fans one event out to every seated player's connection.
func (h *Hub) ToRoom(roomID uuid.UUID, event string, payload any) {
	room, ok := h.registry.Room(roomID)
	if !ok {
		return
	}
	for _, id := range room.PlayerIDs() {
		h.ToPlayer(id, event, payload)
	}
}
