package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Status is the column a task currently belongs to.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

// Statuses lists the four board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// Priority classifies how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const (
	// DefaultBoardID is the board tasks land on when the creator names none.
	DefaultBoardID = "main"
	// Unassigned is the sentinel assignee for tasks without an owner.
	Unassigned = "Non assigné"
)

// Task represents a single board item.
type Task struct {
	ID          string   `json:"id" bson:"id" validate:"required"`
	BoardID     string   `json:"boardId" bson:"boardId" validate:"required"`
	Title       string   `json:"title" bson:"title" validate:"required"`
	Description string   `json:"description" bson:"description"`
	Priority    Priority `json:"priority" bson:"priority" validate:"oneof=low medium high"`
	DueDate     string   `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Labels      []string `json:"labels" bson:"labels"`
	Assignee    string   `json:"assignee" bson:"assignee"`
	Status      Status   `json:"status" bson:"status" validate:"oneof=todo inprogress review done"`
	CreatedAt   string   `json:"createdAt" bson:"createdAt" validate:"required"`
}

// NewTask applies creation defaults to a caller-supplied payload. New tasks
// always start in the todo column. The id is assigned here when the creator
// did not mint one, so callers must not rely on an id before the create
// response arrives.
func NewTask(in Task) Task {
	in.Status = StatusTodo
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.BoardID == "" {
		in.BoardID = DefaultBoardID
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.Assignee == "" {
		in.Assignee = Unassigned
	}
	if in.Labels == nil {
		in.Labels = []string{}
	}
	if in.CreatedAt == "" {
		in.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return in
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// Validate checks field constraints and reports the first violation as a
// ValidationError carrying the offending field.
func (t Task) Validate() error {
	return translate(validate.Struct(t))
}

// Patch is a partial update. Nil fields retain their prior values; id,
// boardId and createdAt are immutable and deliberately absent, so payloads
// naming them have those fields silently ignored.
type Patch struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Description *string   `json:"description"`
	Priority    *Priority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string   `json:"dueDate"`
	Labels      *[]string `json:"labels"`
	Assignee    *string   `json:"assignee"`
	Status      *Status   `json:"status" validate:"omitempty,oneof=todo inprogress review done"`
}

// Validate checks the supplied fields only.
func (p Patch) Validate() error {
	return translate(validate.Struct(p))
}

// Empty reports whether the patch carries no fields at all.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.Labels == nil && p.Assignee == nil && p.Status == nil
}

// Apply returns t with the supplied fields replaced.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Labels != nil {
		t.Labels = *p.Labels
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}
