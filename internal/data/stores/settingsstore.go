package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/notify"
)

const settingsKey = "settings"

// SettingsStore persists notification settings on a Blob. A missing or
// unusable stored value always degrades to defaults.
type SettingsStore struct {
	blob Blob
	mu   sync.Mutex
	log  zerolog.Logger
}

var _ notify.SettingsSource = (*SettingsStore)(nil)

// NewSettingsStore creates a blob-backed settings store.
func NewSettingsStore(blob Blob, log zerolog.Logger) *SettingsStore {
	return &SettingsStore{
		blob: blob,
		log:  log.With().Str("cmp", "settingsstore").Logger(),
	}
}

// Get returns the stored settings, with absent fields filled from
// defaults. Malformed or invalid stored values fall back to defaults
// entirely; Get never fails.
func (s *SettingsStore) Get(_ context.Context) (notify.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := notify.DefaultSettings()

	data, ok := s.blob.Get(settingsKey)
	if !ok {
		return settings, nil
	}

	// Unmarshal over the defaults so fields added after the value was
	// written keep their default instead of zeroing out.
	if err := json.Unmarshal(data, &settings); err != nil {
		s.log.Error().Err(err).Msg("malformed settings blob, using defaults")
		return notify.DefaultSettings(), nil
	}

	if err := settings.Validate(); err != nil {
		s.log.Warn().Err(err).Msg("stored settings invalid, using defaults")
		return notify.DefaultSettings(), nil
	}

	return settings, nil
}

// Set validates and persists the settings.
func (s *SettingsStore) Set(_ context.Context, settings notify.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.blob.Set(settingsKey, data)
}
