package client

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"kanbanflow/board"
	"kanbanflow/domain"
)

// TaskAPI is the slice of Client the controller needs.
type TaskAPI interface {
	List(ctx context.Context, boardID string) ([]domain.Task, error)
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

// Controller owns one board's columns and keeps them consistent with the
// backend. Local mutations are strict: the API call happens first and the
// columns change only when it succeeds, so there is never anything to roll
// back.
type Controller struct {
	api     TaskAPI
	boardID string
	logger  *log.Logger

	mu      sync.RWMutex
	columns board.Columns
}

func NewController(api TaskAPI, boardID string, logger *log.Logger) *Controller {
	if boardID == "" {
		boardID = domain.DefaultBoardID
	}
	return &Controller{
		api:     api,
		boardID: boardID,
		logger:  logger,
		columns: board.NewColumns(),
	}
}

// Load fills the board from the API. When the backend is unreachable it
// falls back to the offline demo dataset rather than presenting an empty
// board.
func (ctl *Controller) Load(ctx context.Context) error {
	tasks, err := ctl.api.List(ctx, ctl.boardID)
	if err != nil {
		ctl.logger.WithError(err).Warn("initial load failed, using demo dataset")
		tasks = board.DemoTasks()
	}

	ctl.mu.Lock()
	ctl.columns = board.Partition(tasks)
	ctl.mu.Unlock()
	return err
}

// Columns returns a snapshot of the board. Lanes are copied; tasks are
// values already.
func (ctl *Controller) Columns() board.Columns {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	out := make(board.Columns, len(ctl.columns))
	for i, col := range ctl.columns {
		tasks := make([]domain.Task, len(col.Tasks))
		copy(tasks, col.Tasks)
		out[i] = board.Column{ID: col.ID, Title: col.Title, Tasks: tasks}
	}
	return out
}

// Add creates a task through the API and appends the stored version to the
// todo lane.
func (ctl *Controller) Add(ctx context.Context, t domain.Task) (domain.Task, error) {
	t.BoardID = ctl.boardID
	created, err := ctl.api.Create(ctx, t)
	if err != nil {
		return domain.Task{}, err
	}

	ctl.mu.Lock()
	ctl.columns = board.Insert(ctl.columns, created)
	ctl.mu.Unlock()
	return created, nil
}

// Move transitions a task between lanes. The status update goes to the API
// first; the board changes only when the backend accepted it.
func (ctl *Controller) Move(ctx context.Context, taskID string, from, to domain.Status) error {
	status := to
	if _, err := ctl.api.Update(ctx, taskID, domain.Patch{Status: &status}); err != nil {
		return err
	}

	ctl.mu.Lock()
	ctl.columns = board.Move(ctl.columns, taskID, from, to)
	ctl.mu.Unlock()
	return nil
}

// Remove deletes a task through the API and drops it from the board.
func (ctl *Controller) Remove(ctx context.Context, taskID string) error {
	if err := ctl.api.Delete(ctx, taskID); err != nil {
		return err
	}

	ctl.mu.Lock()
	ctl.columns = board.Remove(ctl.columns, taskID)
	ctl.mu.Unlock()
	return nil
}

// ApplyRemote reconciles the board with a task-changed payload received
// over the realtime channel. Payloads are untrusted: anything malformed,
// for another board, or carrying an unknown status is silently ignored.
func (ctl *Controller) ApplyRemote(data []byte) {
	ev, err := domain.DecodeChangeEvent(data)
	if err != nil {
		ctl.logger.WithError(err).Debug("unusable task-changed payload, ignoring")
		return
	}
	if ev.BoardID != ctl.boardID {
		return
	}

	task, err := ev.DecodeTask()
	if err != nil || task.ID == "" {
		ctl.logger.Debug("task-changed without a usable task, ignoring")
		return
	}

	if ev.Action == domain.ActionDeleted {
		ctl.mu.Lock()
		ctl.columns = board.Remove(ctl.columns, task.ID)
		ctl.mu.Unlock()
		return
	}

	if !task.Status.Valid() {
		ctl.logger.Debug("task-changed without a usable task, ignoring")
		return
	}

	ctl.mu.Lock()
	ctl.columns = board.Insert(board.Remove(ctl.columns, task.ID), task)
	ctl.mu.Unlock()
}
