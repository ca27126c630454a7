package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tempo/internal/core/notify"
)

func TestApplySetting(t *testing.T) {
	cases := []struct {
		key   string
		value string
		check func(t *testing.T, s notify.Settings)
	}{
		{"enabled", "off", func(t *testing.T, s notify.Settings) {
			assert.False(t, s.Enabled)
		}},
		{"reminder_timing", "30", func(t *testing.T, s notify.Settings) {
			assert.Equal(t, 30, s.ReminderTiming)
		}},
		{"sound", "no", func(t *testing.T, s notify.Settings) {
			assert.False(t, s.SoundEnabled)
		}},
		{"quiet_hours", "on", func(t *testing.T, s notify.Settings) {
			assert.True(t, s.QuietHours.Enabled)
		}},
		{"quiet_start", "23:30", func(t *testing.T, s notify.Settings) {
			assert.Equal(t, "23:30", s.QuietHours.Start)
		}},
		{"overdue_frequency", "10min", func(t *testing.T, s notify.Settings) {
			assert.Equal(t, notify.FreqEvery10, s.OverdueFrequency)
		}},
		{"max_reminders_per_task", "5", func(t *testing.T, s notify.Settings) {
			assert.Equal(t, 5, s.MaxRemindersPerTask)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			s := notify.DefaultSettings()
			require.NoError(t, applySetting(&s, tc.key, tc.value))
			tc.check(t, s)
		})
	}
}

func TestApplySetting_Errors(t *testing.T) {
	s := notify.DefaultSettings()

	assert.Error(t, applySetting(&s, "volume", "11"), "unknown key")
	assert.Error(t, applySetting(&s, "enabled", "maybe"), "bad bool")
	assert.Error(t, applySetting(&s, "reminder_timing", "soon"), "bad int")
}
