package stores

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tempo/internal/core/notify"
)

func TestSettingsStore_MissingYieldsDefaults(t *testing.T) {
	s := NewSettingsStore(newTestBlob(t), zerolog.Nop())

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, notify.DefaultSettings(), got)
}

func TestSettingsStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSettingsStore(newTestBlob(t), zerolog.Nop())

	want := notify.DefaultSettings()
	want.ReminderTiming = 30
	want.QuietHours = notify.QuietHours{Enabled: true, Start: "23:00", End: "06:00"}
	want.OverdueFrequency = notify.FreqEvery10

	require.NoError(t, s.Set(ctx, want))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSettingsStore_PartialValueKeepsDefaults(t *testing.T) {
	ctx := context.Background()
	blob := newTestBlob(t)

	// A value written by an older version that knew fewer fields.
	require.NoError(t, blob.Set("settings", []byte(`{"enabled": true, "reminder_timing": 20}`)))

	s := NewSettingsStore(blob, zerolog.Nop())
	got, err := s.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 20, got.ReminderTiming)
	// Everything the stored value omitted keeps its default.
	assert.Equal(t, notify.FreqOnce, got.ReminderFrequency)
	assert.Equal(t, 3, got.MaxRemindersPerTask)
}

func TestSettingsStore_MalformedYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	blob := newTestBlob(t)
	require.NoError(t, blob.Set("settings", []byte("not json at all")))

	s := NewSettingsStore(blob, zerolog.Nop())
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, notify.DefaultSettings(), got)
}

func TestSettingsStore_InvalidStoredYieldsDefaults(t *testing.T) {
	ctx := context.Background()
	blob := newTestBlob(t)
	require.NoError(t, blob.Set("settings", []byte(`{"reminder_timing": -5}`)))

	s := NewSettingsStore(blob, zerolog.Nop())
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, notify.DefaultSettings(), got)
}

func TestSettingsStore_SetRejectsInvalid(t *testing.T) {
	s := NewSettingsStore(newTestBlob(t), zerolog.Nop())

	bad := notify.DefaultSettings()
	bad.ReminderFrequency = "sometimes"

	assert.Error(t, s.Set(context.Background(), bad))
}
