package notify

import (
	"fmt"
	"time"

	"github.com/colonyops/tempo/internal/core/timeutil"
)

// Frequency controls how often a reminder of the same task and type may
// be re-sent.
type Frequency string

const (
	FreqOnce       Frequency = "once"
	FreqEvery5     Frequency = "5min"
	FreqEvery10    Frequency = "10min"
	FreqUntilStart Frequency = "until_start"
	FreqUntilDone  Frequency = "until_done"
)

// ValidForReminder reports whether the frequency may be used for
// upcoming-task reminders. until_done only makes sense once a task has
// started, so it is overdue-only.
func (f Frequency) ValidForReminder() bool {
	switch f {
	case FreqOnce, FreqEvery5, FreqEvery10, FreqUntilStart:
		return true
	default:
		return false
	}
}

// ValidForOverdue reports whether the frequency may be used for overdue
// nags. until_start is meaningless after the start time has passed.
func (f Frequency) ValidForOverdue() bool {
	switch f {
	case FreqOnce, FreqEvery5, FreqEvery10, FreqUntilDone:
		return true
	default:
		return false
	}
}

// Interval returns the minimum gap before a resend. Zero means the
// frequency either never resends (once) or resends without a gap
// (until_start, until_done); callers distinguish via the value itself.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FreqEvery5:
		return 5 * time.Minute
	case FreqEvery10:
		return 10 * time.Minute
	default:
		return 0
	}
}

// QuietHours is a time-of-day window during which non-critical
// notifications are suppressed.
type QuietHours struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Start   string `json:"start" yaml:"start"` // HH:MM
	End     string `json:"end" yaml:"end"`     // HH:MM
}

// Contains reports whether the instant falls inside the window. The
// window is circular: 22:00-07:00 covers late evening through early
// morning.
func (q QuietHours) Contains(now time.Time) bool {
	if !q.Enabled {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	start := timeutil.ToMinutes(q.Start)
	end := timeutil.ToMinutes(q.End)
	if start <= end {
		return minute >= start && minute < end
	}
	return minute >= start || minute < end
}

// Settings holds the user's notification preferences.
type Settings struct {
	Enabled               bool       `json:"enabled" yaml:"enabled"`
	ReminderTiming        int        `json:"reminder_timing" yaml:"reminder_timing"` // minutes before start
	SoundEnabled          bool       `json:"sound_enabled" yaml:"sound_enabled"`
	PushEnabled           bool       `json:"push_enabled" yaml:"push_enabled"`
	BreakReminders        bool       `json:"break_reminders" yaml:"break_reminders"`
	DailySummary          bool       `json:"daily_summary" yaml:"daily_summary"`
	QuietHours            QuietHours `json:"quiet_hours" yaml:"quiet_hours"`
	ReminderFrequency     Frequency  `json:"reminder_frequency" yaml:"reminder_frequency"`
	OverdueFrequency      Frequency  `json:"overdue_frequency" yaml:"overdue_frequency"`
	ShowInProgressOverdue bool       `json:"show_in_progress_overdue" yaml:"show_in_progress_overdue"`
	MaxRemindersPerTask   int        `json:"max_reminders_per_task" yaml:"max_reminders_per_task"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Enabled:               true,
		ReminderTiming:        15,
		SoundEnabled:          true,
		PushEnabled:           true,
		BreakReminders:        true,
		DailySummary:          true,
		QuietHours:            QuietHours{Enabled: false, Start: "22:00", End: "07:00"},
		ReminderFrequency:     FreqOnce,
		OverdueFrequency:      FreqEvery5,
		ShowInProgressOverdue: false,
		MaxRemindersPerTask:   3,
	}
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if s.ReminderTiming < 1 {
		return fmt.Errorf("reminder_timing must be at least 1 minute")
	}
	if s.MaxRemindersPerTask < 1 {
		return fmt.Errorf("max_reminders_per_task must be at least 1")
	}
	if !s.ReminderFrequency.ValidForReminder() {
		return fmt.Errorf("invalid reminder_frequency %q", s.ReminderFrequency)
	}
	if !s.OverdueFrequency.ValidForOverdue() {
		return fmt.Errorf("invalid overdue_frequency %q", s.OverdueFrequency)
	}
	return nil
}
