package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/task"
)

// DefaultEvalInterval is how often the rule engine re-evaluates the
// task collection.
const DefaultEvalInterval = time.Minute

// SettingsSource yields the current notification settings at tick time.
type SettingsSource interface {
	Get(ctx context.Context) (Settings, error)
}

// Scheduler drives periodic rule engine evaluation. Each tick reads
// fresh task, settings, and log state from the stores, so changes made
// between ticks are always observed.
type Scheduler struct {
	engine   *Engine
	tasks    task.Store
	settings SettingsSource
	store    Store
	sound    Sink
	push     Sink
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewScheduler creates a scheduler. sound and push may be nil.
func NewScheduler(engine *Engine, tasks task.Store, settings SettingsSource, store Store, sound, push Sink, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		engine:   engine,
		tasks:    tasks,
		settings: settings,
		store:    store,
		sound:    sound,
		push:     push,
		interval: DefaultEvalInterval,
		now:      time.Now,
		log:      log.With().Str("cmp", "notify-scheduler").Logger(),
	}
}

// WithInterval overrides the evaluation interval.
func (s *Scheduler) WithInterval(d time.Duration) *Scheduler {
	s.interval = d
	return s
}

// WithClock overrides the wall-clock source. Used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Run evaluates once immediately, then on every interval tick until the
// context is cancelled. It blocks; run it in a goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one evaluation pass and emits the resulting notifications.
// Failures degrade: a store read error skips the tick, a store write
// error drops that one notification, sink failures are silent.
func (s *Scheduler) Tick(ctx context.Context) {
	tasks, err := s.tasks.List(ctx, task.ListFilter{})
	if err != nil {
		s.log.Error().Err(err).Msg("task read failed, skipping tick")
		return
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("settings read failed, using defaults")
		settings = DefaultSettings()
	}

	existing, err := s.store.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("notification log read failed, skipping tick")
		return
	}

	for _, n := range s.engine.Evaluate(s.now(), tasks, settings, existing) {
		s.Emit(ctx, n, settings)
	}
}

// Emit appends a notification to the log and dispatches the sound and
// push sinks according to the settings flags.
func (s *Scheduler) Emit(ctx context.Context, n Notification, settings Settings) {
	if err := s.store.Append(ctx, n); err != nil {
		s.log.Error().Err(err).Str("type", string(n.Type)).Msg("notification append failed")
		return
	}

	s.log.Debug().Str("type", string(n.Type)).Str("task", n.TaskID).Msg("notification emitted")

	if settings.SoundEnabled && s.sound != nil {
		s.sound.Deliver(ctx, n)
	}
	if settings.PushEnabled && s.push != nil {
		s.push.Deliver(ctx, n)
	}
}
