package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/notify"
)

const notificationsKey = "notifications"

// notifyEnvelope is the stored JSON shape for the notification log.
type notifyEnvelope struct {
	Notifications []notify.Notification `json:"notifications"`
}

// NotifyStore implements the bounded notification log on a Blob.
// Entries are kept newest first and capped at notify.MaxKept.
type NotifyStore struct {
	blob Blob
	mu   sync.Mutex
	log  zerolog.Logger
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a blob-backed notification store.
func NewNotifyStore(blob Blob, log zerolog.Logger) *NotifyStore {
	return &NotifyStore{
		blob: blob,
		log:  log.With().Str("cmp", "notifystore").Logger(),
	}
}

// Append front-inserts a notification and truncates to the cap.
func (s *NotifyStore) Append(_ context.Context, n notify.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.load()
	env.Notifications = append([]notify.Notification{n}, env.Notifications...)
	if len(env.Notifications) > notify.MaxKept {
		env.Notifications = env.Notifications[:notify.MaxKept]
	}
	return s.save(env)
}

// List returns all notifications, newest first.
func (s *NotifyStore) List(_ context.Context) ([]notify.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load().Notifications, nil
}

// MarkRead flips a single notification to read.
func (s *NotifyStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.load()
	for i := range env.Notifications {
		if env.Notifications[i].ID == id {
			env.Notifications[i].Read = true
			return s.save(env)
		}
	}
	return notify.ErrNotFound
}

// MarkAllRead flips every notification to read.
func (s *NotifyStore) MarkAllRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.load()
	for i := range env.Notifications {
		env.Notifications[i].Read = true
	}
	return s.save(env)
}

// ClearAll empties the log.
func (s *NotifyStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(notifyEnvelope{Notifications: []notify.Notification{}})
}

// Unread returns the number of unread notifications.
func (s *NotifyStore) Unread(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.load().Notifications {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *NotifyStore) load() notifyEnvelope {
	data, ok := s.blob.Get(notificationsKey)
	if !ok {
		return notifyEnvelope{Notifications: []notify.Notification{}}
	}

	var env notifyEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Error().Err(err).Msg("malformed notification blob, starting empty")
		return notifyEnvelope{Notifications: []notify.Notification{}}
	}
	return env
}

func (s *NotifyStore) save(env notifyEnvelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notifications: %w", err)
	}
	return s.blob.Set(notificationsKey, data)
}
