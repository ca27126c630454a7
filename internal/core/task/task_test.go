package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_SetCompleted(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("false to true stamps completed_at", func(t *testing.T) {
		tk := Task{}
		tk.SetCompleted(true, now)

		assert.True(t, tk.Completed)
		assert.NotNil(t, tk.CompletedAt)
		assert.Equal(t, now, *tk.CompletedAt)
	})

	t.Run("true to false clears completed_at", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		tk := Task{Completed: true, CompletedAt: &earlier}
		tk.SetCompleted(false, now)

		assert.False(t, tk.Completed)
		assert.Nil(t, tk.CompletedAt)
	})

	t.Run("true to true keeps original stamp", func(t *testing.T) {
		earlier := now.Add(-time.Hour)
		tk := Task{Completed: true, CompletedAt: &earlier}
		tk.SetCompleted(true, now)

		assert.Equal(t, earlier, *tk.CompletedAt)
	})
}

func TestTask_Elapsed(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("idle returns closed total", func(t *testing.T) {
		tk := Task{Tracking: Tracking{TotalSpent: 30 * time.Minute}}
		assert.Equal(t, 30*time.Minute, tk.Elapsed(now))
	})

	t.Run("tracking adds the open session", func(t *testing.T) {
		start := now.Add(-10 * time.Minute)
		tk := Task{Tracking: Tracking{
			IsTracking:   true,
			SessionStart: &start,
			TotalSpent:   30 * time.Minute,
		}}
		assert.Equal(t, 40*time.Minute, tk.Elapsed(now))
	})
}

func TestTask_ProgressPercent(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("no estimate is zero", func(t *testing.T) {
		tk := Task{Tracking: Tracking{TotalSpent: time.Hour}}
		assert.Zero(t, tk.ProgressPercent(now))
	})

	t.Run("half done", func(t *testing.T) {
		tk := Task{
			EstimatedDuration: 3600,
			Tracking:          Tracking{TotalSpent: 30 * time.Minute},
		}
		assert.InDelta(t, 50.0, tk.ProgressPercent(now), 0.01)
	})
}

func TestTask_Normalize(t *testing.T) {
	t.Run("backfills legacy record", func(t *testing.T) {
		tk := Task{Title: "old task"}
		tk.Normalize()

		assert.Equal(t, PriorityMedium, tk.Priority)
		assert.Equal(t, "personal", tk.Category)
		assert.NotNil(t, tk.Tags)
		assert.NotNil(t, tk.Tracking.Sessions)
	})

	t.Run("repairs tracking flag without session start", func(t *testing.T) {
		tk := Task{Tracking: Tracking{IsTracking: true}}
		tk.Normalize()

		assert.False(t, tk.Tracking.IsTracking)
	})

	t.Run("derives actual duration from total", func(t *testing.T) {
		tk := Task{Tracking: Tracking{TotalSpent: 90 * time.Second}}
		tk.Normalize()

		assert.Equal(t, 90, tk.ActualDuration)
	})

	t.Run("leaves populated record alone", func(t *testing.T) {
		tk := Task{
			Priority: PriorityHigh,
			Category: "work",
			Tags:     []string{"deep"},
		}
		tk.Normalize()

		assert.Equal(t, PriorityHigh, tk.Priority)
		assert.Equal(t, "work", tk.Category)
		assert.Equal(t, []string{"deep"}, tk.Tags)
	})
}

func TestTask_Validate(t *testing.T) {
	valid := Task{
		Title:     "write report",
		Day:       Monday,
		Date:      "2026-03-09",
		StartTime: "09:00",
		EndTime:   "10:00",
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr bool
	}{
		{"valid task", func(*Task) {}, false},
		{"empty title", func(tk *Task) { tk.Title = "" }, true},
		{"unknown day", func(tk *Task) { tk.Day = "someday" }, true},
		{"malformed start", func(tk *Task) { tk.StartTime = "9am" }, true},
		{"malformed end", func(tk *Task) { tk.EndTime = "later" }, true},
		{"end equals start", func(tk *Task) { tk.EndTime = "09:00" }, true},
		{"end before start", func(tk *Task) { tk.EndTime = "08:00" }, true},
		{"midnight start ok", func(tk *Task) { tk.StartTime = "00:00" }, false},
		{"unpadded hour ok", func(tk *Task) { tk.StartTime = "9:00" }, false},
		{"unpadded midnight ok", func(tk *Task) { tk.StartTime = "0:00" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := valid
			tt.mutate(&tk)
			err := tk.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDayOf(t *testing.T) {
	// 2026-03-09 is a Monday.
	assert.Equal(t, Monday, DayOf(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, DayOf(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
}
