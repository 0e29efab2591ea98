package stream

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Hub tracks which connections subscribed to which boards and relays
// published payloads between them. Delivery is best-effort, at-most-once:
// a slow consumer whose buffer is full is skipped, and nothing is retained
// for connections that join later.
type Hub struct {
	logger *log.Logger

	mu     sync.RWMutex
	boards map[string]map[*Client]struct{}

	// forward, when set, mirrors locally published payloads to other
	// instances (see Bridge).
	forward func(boardID string, payload []byte)
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger,
		boards: make(map[string]map[*Client]struct{}),
	}
}

// SetForwarder installs the cross-instance forwarding hook. It must be set
// before any client connects.
func (h *Hub) SetForwarder(fn func(boardID string, payload []byte)) {
	h.forward = fn
}

// Join subscribes a client to a board. Joining twice has no additional
// effect.
func (h *Hub) Join(c *Client, boardID string) {
	if boardID == "" {
		return
	}
	h.mu.Lock()
	members, ok := h.boards[boardID]
	if !ok {
		members = make(map[*Client]struct{})
		h.boards[boardID] = members
	}
	members[c] = struct{}{}
	h.mu.Unlock()
	h.logger.WithFields(log.Fields{"board": boardID}).Debug("client joined board")
}

// Relay delivers payload, wrapped as a task-changed message, to every
// board member except the sender, then mirrors it to other instances.
func (h *Hub) Relay(boardID string, payload []byte, sender *Client) {
	h.deliver(boardID, payload, sender)
	if h.forward != nil {
		h.forward(boardID, payload)
	}
}

// Broadcast delivers a payload originating on another instance to every
// local board member. There is no sender to exclude.
func (h *Hub) Broadcast(boardID string, payload []byte) {
	h.deliver(boardID, payload, nil)
}

func (h *Hub) deliver(boardID string, payload []byte, sender *Client) {
	data, err := encodeTaskChanged(payload)
	if err != nil {
		h.logger.WithError(err).Error("encode task-changed message")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.boards[boardID] {
		if member == sender {
			continue
		}
		select {
		case member.send <- data:
		default:
			// Buffer full: drop rather than block the relay.
			h.logger.WithFields(log.Fields{"board": boardID}).Warn("client send buffer full, dropping event")
		}
	}
}

// remove detaches a disconnected client from every board, silently.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	for boardID, members := range h.boards {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.boards, boardID)
			}
		}
	}
	h.mu.Unlock()
}
