package domain

import (
	"encoding/json"
	"errors"

	"github.com/bytedance/sonic"
)

// Realtime channel event names, matching the wire protocol: clients send
// join-board and task-updated, the relay forwards task-changed.
const (
	EventJoinBoard   = "join-board"
	EventTaskUpdated = "task-updated"
	EventTaskChanged = "task-changed"
)

// Change actions carried by a ChangeEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent is the payload a client publishes after a successful mutation
// and receives as a task-changed notification. The relay never validates it,
// so receivers must treat any decode failure as a no-op.
type ChangeEvent struct {
	BoardID string          `json:"boardId"`
	Action  string          `json:"action,omitempty"`
	Task    json.RawMessage `json:"task,omitempty"`
}

// DecodeChangeEvent parses a raw channel payload. A payload without a board
// id is rejected, matching what the relay itself requires to route it.
func DecodeChangeEvent(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := sonic.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, err
	}
	if ev.BoardID == "" {
		return ChangeEvent{}, errors.New("change event missing board id")
	}
	return ev, nil
}

// DecodeTask parses the task payload of the event, if any.
func (ev ChangeEvent) DecodeTask() (Task, error) {
	var t Task
	if len(ev.Task) == 0 {
		return Task{}, errors.New("change event has no task payload")
	}
	if err := sonic.Unmarshal(ev.Task, &t); err != nil {
		return Task{}, err
	}
	return t, nil
}
