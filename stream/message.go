// Package stream implements the realtime fan-out channel: a per-board
// publish/subscribe relay over websocket connections, with an optional
// Redis bridge so multiple instances fan out to each other's clients.
package stream

import (
	"encoding/json"

	"github.com/bytedance/sonic"

	"kanbanflow/domain"
)

// Message is the wire envelope for channel traffic. Clients send
// join-board and task-updated; the relay emits task-changed. The data
// payload is relayed as-is and never validated against the task schema.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func encodeTaskChanged(payload []byte) ([]byte, error) {
	return sonic.Marshal(Message{Event: domain.EventTaskChanged, Data: payload})
}
