// Package notify defines the notification domain: the bounded
// notification log, user settings, and the rule engine that decides
// which reminders to emit on each evaluation tick.
package notify

import (
	"context"
	"errors"
	"time"
)

// MaxKept is the cap on the notification log. Appending beyond it
// evicts the oldest entries.
const MaxKept = 50

// Type classifies a notification. Rule dispatch switches over this enum
// rather than a string-keyed table so new types fail to compile until
// every site handles them.
type Type string

const (
	TypeReminder   Type = "reminder"
	TypeOverdue    Type = "overdue"
	TypeProgress   Type = "progress"
	TypeSchedule   Type = "schedule"
	TypeBreak      Type = "break"
	TypeCompletion Type = "completion"
	TypeSummary    Type = "summary"
)

// IsValid reports whether the type is a recognized value.
func (t Type) IsValid() bool {
	switch t {
	case TypeReminder, TypeOverdue, TypeProgress, TypeSchedule, TypeBreak, TypeCompletion, TypeSummary:
		return true
	default:
		return false
	}
}

// Notification is one entry in the notification log.
type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	TaskID    string    `json:"task_id,omitempty"` // empty for task-less types
	TaskTitle string    `json:"task_title,omitempty"`
	Message   string    `json:"message"`
	Milestone int       `json:"milestone,omitempty"` // progress dedup bucket
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// ErrNotFound is returned when a notification does not exist.
var ErrNotFound = errors.New("notification not found")

// Store is the bounded append-only notification log. The rule engine
// only appends; the UI only marks read and clears.
type Store interface {
	// Append front-inserts a notification, truncating the log to MaxKept.
	Append(ctx context.Context, n Notification) error

	// List returns all notifications, newest first.
	List(ctx context.Context) ([]Notification, error)

	// MarkRead flips a single notification to read.
	MarkRead(ctx context.Context, id string) error

	// MarkAllRead flips every notification to read.
	MarkAllRead(ctx context.Context) error

	// ClearAll empties the log.
	ClearAll(ctx context.Context) error

	// Unread returns the number of unread notifications.
	Unread(ctx context.Context) (int, error)
}

// Sink delivers an emitted notification to an output channel (sound,
// platform push). Sinks must fail silently: delivery is best-effort.
type Sink interface {
	Deliver(ctx context.Context, n Notification)
}
