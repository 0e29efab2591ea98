package api

import (
	"context"

	"kanbanflow/domain"
)

// Store abstracts persistence for handlers.
type Store interface {
	GetAll(ctx context.Context, boardID string) ([]domain.Task, error)
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type boardSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	TaskCount int    `json:"taskCount"`
}
