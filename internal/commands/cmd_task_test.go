package commands

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/tempo"
)

func TestSplitTags(t *testing.T) {
	assert.Nil(t, splitTags(""))
	assert.Equal(t, []string{"deep"}, splitTags("deep"))
	assert.Equal(t, []string{"deep", "focus"}, splitTags("deep, focus"))
	assert.Equal(t, []string{"deep"}, splitTags("deep,,  ,"))
}

func TestValidateClock(t *testing.T) {
	assert.NoError(t, validateClock("09:30"))
	assert.NoError(t, validateClock("00:00"))
	assert.NoError(t, validateClock("9:30"))
	assert.NoError(t, validateClock("0:00"))
	assert.Error(t, validateClock("9am"))
	assert.Error(t, validateClock(""))
}

func TestTaskAdd_EvaluatesRules(t *testing.T) {
	ctx := context.Background()

	app := tempo.NewApp(&config.Config{EvalIntervalSeconds: 60, DataDir: t.TempDir()}, zerolog.Nop())
	now := time.Date(2026, time.March, 10, 10, 0, 0, 0, time.Local) // a Tuesday
	app.Scheduler.WithClock(func() time.Time { return now })

	s := notify.DefaultSettings()
	s.SoundEnabled = false
	s.PushEnabled = false
	s.BreakReminders = false
	s.DailySummary = false
	require.NoError(t, app.Settings.Set(ctx, s))

	cmd := NewTaskCmd(&Flags{}, app)
	cmd.title = "standup"
	cmd.day = "tuesday"
	cmd.date = "2026-03-10"
	cmd.start = "10:10"
	cmd.end = "10:40"

	require.NoError(t, cmd.runAdd(ctx, &cli.Command{Writer: io.Discard}))

	// Adding a task inside its reminder window notifies right away, not
	// on the next interval tick.
	ns, err := app.Notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, notify.TypeReminder, ns[0].Type)
	assert.Equal(t, "standup", ns[0].TaskTitle)
}
