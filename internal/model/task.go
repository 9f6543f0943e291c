package model

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Next returns the status that follows s in the todo -> in-progress -> done -> todo cycle.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	default:
		return StatusTodo
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

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

// ParsePriority accepts an empty string as the default (medium).
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
	}
	return p, nil
}

type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask builds an unsaved task draft; identity and timestamps are assigned on create.
func NewTask(title string, priority Priority) Task {
	if priority == "" {
		priority = PriorityMedium
	}
	return Task{
		Title:    strings.TrimSpace(title),
		Status:   StatusTodo,
		Priority: priority,
	}
}

func (t Task) EntityID() string { return t.ID }
func (t Task) Owner() string { return t.OwnerID }
func (t Task) Created() time.Time { return t.CreatedAt }
func (t Task) Updated() time.Time { return t.UpdatedAt }

func (t Task) Stamp(id, ownerID string, at time.Time) Task {
	t.ID = id
	t.OwnerID = ownerID
	t.CreatedAt = at
	t.UpdatedAt = at
	return t
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, t.Priority)
	}
	return nil
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p TaskPatch) At(ts time.Time) TaskPatch {
	p.UpdatedAt = ts
	return p
}

func (p TaskPatch) ModifiedAt() time.Time { return p.UpdatedAt }

func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.UpdatedAt.After(t.UpdatedAt) {
		t.UpdatedAt = p.UpdatedAt
	}
	return t
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrValidation, *p.Priority)
	}
	return nil
}

// TaskOrder is the order tasks are listed in: newest first.
var TaskOrder = Order{Field: FieldCreatedAt, Desc: true}
