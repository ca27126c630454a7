package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/tempo"
)

// 2026-03-10 is a Tuesday.
var boardNow = time.Date(2026, time.March, 10, 10, 0, 0, 0, time.Local)

func newBoardApp(t *testing.T) *tempo.App {
	t.Helper()

	cfg := &config.Config{EvalIntervalSeconds: 60, DataDir: t.TempDir()}
	app := tempo.NewApp(cfg, zerolog.Nop())
	app.Scheduler.WithClock(func() time.Time { return boardNow })

	// Silence the sinks and the task-less rules so ticks produce only
	// reminders for the seeded tasks.
	s := notify.DefaultSettings()
	s.SoundEnabled = false
	s.PushEnabled = false
	s.BreakReminders = false
	s.DailySummary = false
	require.NoError(t, app.Settings.Set(context.Background(), s))

	return app
}

func seedTask(t *testing.T, app *tempo.App, title, start, end string) task.Task {
	t.Helper()

	created, err := app.Tasks.Create(context.Background(), task.Task{
		Title:     title,
		Day:       task.Tuesday,
		Date:      "2026-03-10",
		StartTime: start,
		EndTime:   end,
	})
	require.NoError(t, err)
	return created
}

func reminderFor(ns []notify.Notification, taskID string) bool {
	for _, n := range ns {
		if n.Type == notify.TypeReminder && n.TaskID == taskID {
			return true
		}
	}
	return false
}

func TestBoard_InitEvaluatesImmediately(t *testing.T) {
	ctx := context.Background()
	app := newBoardApp(t)
	seeded := seedTask(t, app, "standup", "10:10", "10:40")

	m := New(app, zerolog.Nop())
	msg := m.Init()()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok)

	// The tick commands in the batch block for their interval; run
	// everything concurrently and wait only for the eager evaluation.
	for _, cmd := range batch {
		go cmd()
	}

	require.Eventually(t, func() bool {
		ns, err := app.Notifications.List(ctx)
		return err == nil && reminderFor(ns, seeded.ID)
	}, 2*time.Second, 20*time.Millisecond,
		"reminder should arrive on startup, not after the first interval")
}

func TestBoard_CompleteKeyReevaluates(t *testing.T) {
	ctx := context.Background()
	app := newBoardApp(t)
	first := seedTask(t, app, "standup", "10:02", "10:08")
	second := seedTask(t, app, "deep work", "10:10", "10:40")

	m := New(app, zerolog.Nop())
	model, _ := m.Update(m.loadCmd()())

	model, cmd := model.(Model).Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	require.NotNil(t, cmd)
	model.(Model).Update(cmd())

	done, err := app.Tasks.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)

	ns, err := app.Notifications.List(ctx)
	require.NoError(t, err)
	assert.True(t, reminderFor(ns, second.ID), "completing a task should trigger a fresh evaluation")
	assert.False(t, reminderFor(ns, first.ID), "no reminder for a task completed before the evaluation")
}
