package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

// ListFilter controls which tasks are returned by List.
type ListFilter struct {
	Day       Day   // empty means all days
	Completed *bool // nil means all
}

// Store defines the interface for task persistence.
type Store interface {
	// Create persists a new task. The store populates CreatedAt and
	// UpdatedAt if not already set.
	Create(ctx context.Context, t *Task) error

	// Get returns a single task by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Task, error)

	// List returns tasks matching the filter, ordered by start time.
	List(ctx context.Context, filter ListFilter) ([]Task, error)

	// Update replaces the stored task with the same ID.
	// Returns ErrNotFound if the task does not exist.
	Update(ctx context.Context, t Task) error

	// Delete removes a task. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id string) error
}
