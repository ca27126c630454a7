// Package task defines the task domain model for the weekly schedule.
//
// Terminology:
//   - Task: one scheduled block on the weekly grid
//   - Session: one contiguous interval of tracked work on a task
//   - Elapsed: closed session total plus the open session, if tracking
package task

import (
	"fmt"
	"time"

	"github.com/colonyops/tempo/internal/core/timeutil"
)

// Day is a weekday name as used by the weekly grid.
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// Days lists all weekdays in grid order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// IsValid reports whether the day is one of the seven weekday names.
func (d Day) IsValid() bool {
	for _, day := range Days {
		if d == day {
			return true
		}
	}
	return false
}

// DayOf returns the grid day for a wall-clock instant.
func DayOf(t time.Time) Day {
	return Day(map[time.Weekday]Day{
		time.Monday:    Monday,
		time.Tuesday:   Tuesday,
		time.Wednesday: Wednesday,
		time.Thursday:  Thursday,
		time.Friday:    Friday,
		time.Saturday:  Saturday,
		time.Sunday:    Sunday,
	}[t.Weekday()])
}

// Priority represents task urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether the priority is a recognized value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// DefaultCategories is the built-in category set offered by forms.
// Tasks may carry any free-form category string.
var DefaultCategories = []string{"work", "personal", "health", "learning", "errands"}

// Session is one closed interval of tracked work.
type Session struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
	Manual   bool          `json:"manual,omitempty"`
}

// Tracking holds per-task time accounting state.
//
// Invariant: IsTracking is true iff SessionStart is non-nil. TotalSpent
// accumulates closed sessions only and never decreases except via reset.
type Tracking struct {
	IsTracking   bool          `json:"is_tracking"`
	SessionStart *time.Time    `json:"session_start,omitempty"`
	TotalSpent   time.Duration `json:"total_spent"`
	Sessions     []Session     `json:"sessions"`
}

// Task represents a single scheduled block on the weekly grid.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Day         Day        `json:"day"`
	Date        string     `json:"date"`       // YYYY-MM-DD
	StartTime   string     `json:"start_time"` // HH:MM
	EndTime     string     `json:"end_time"`   // HH:MM
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// EstimatedDuration is the planned effort in seconds, used as the
	// denominator for progress percentages. ActualDuration mirrors the
	// tracked total in whole seconds.
	EstimatedDuration int `json:"estimated_duration"`
	ActualDuration    int `json:"actual_duration"`

	Tracking Tracking `json:"time_tracking"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Elapsed returns total tracked time including the open session, if any.
func (t *Task) Elapsed(now time.Time) time.Duration {
	total := t.Tracking.TotalSpent
	if t.Tracking.IsTracking && t.Tracking.SessionStart != nil {
		total += now.Sub(*t.Tracking.SessionStart)
	}
	return total
}

// ProgressPercent returns elapsed time as a percentage of the estimate.
// Returns 0 when no estimate is set.
func (t *Task) ProgressPercent(now time.Time) float64 {
	if t.EstimatedDuration <= 0 {
		return 0
	}
	return t.Elapsed(now).Seconds() / float64(t.EstimatedDuration) * 100
}

// SetCompleted transitions the completion flag, stamping CompletedAt on
// the false-to-true edge and clearing it on the reverse edge.
func (t *Task) SetCompleted(done bool, now time.Time) {
	if done && !t.Completed {
		t.CompletedAt = &now
	}
	if !done {
		t.CompletedAt = nil
	}
	t.Completed = done
	t.UpdatedAt = now
}

// Normalize backfills fields absent from records written by older schema
// versions so legacy tasks can flow through the tracker and validator
// without nil dereferences.
func (t *Task) Normalize() {
	if !t.Priority.IsValid() {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = "personal"
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.Tracking.Sessions == nil {
		t.Tracking.Sessions = []Session{}
	}
	// A half-open record with the flag set but no session start cannot be
	// closed; treat it as idle.
	if t.Tracking.IsTracking && t.Tracking.SessionStart == nil {
		t.Tracking.IsTracking = false
	}
	if t.ActualDuration == 0 && t.Tracking.TotalSpent > 0 {
		t.ActualDuration = int(t.Tracking.TotalSpent.Seconds())
	}
}

// Validate checks the task's scheduling fields. Overnight windows are
// rejected: the weekly grid has no representation for a task whose end
// precedes its start.
func (t *Task) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("task title is required")
	}
	if !t.Day.IsValid() {
		return fmt.Errorf("unknown day %q", t.Day)
	}
	start, ok := timeutil.ParseClock(t.StartTime)
	if !ok {
		return fmt.Errorf("malformed start time %q", t.StartTime)
	}
	end, ok := timeutil.ParseClock(t.EndTime)
	if !ok {
		return fmt.Errorf("malformed end time %q", t.EndTime)
	}
	if end <= start {
		return fmt.Errorf("end time %s must be after start time %s", t.EndTime, t.StartTime)
	}
	return nil
}
