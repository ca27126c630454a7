// Package tracking implements the per-task time tracking engine.
//
// A task is either Idle or Active. At most one task may be Active at a
// time across the whole collection; Start enforces this by closing any
// other open session inside the same mutation.
package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/task"
)

// Clock returns the current wall-clock time. Injected for tests.
type Clock func() time.Time

// Tracker mutates task tracking state through the task store.
type Tracker struct {
	store task.Store
	now   Clock
	log   zerolog.Logger
}

// New creates a Tracker backed by the given store.
func New(store task.Store, log zerolog.Logger) *Tracker {
	return &Tracker{
		store: store,
		now:   time.Now,
		log:   log.With().Str("cmp", "tracker").Logger(),
	}
}

// WithClock overrides the wall-clock source. Used by tests.
func (tr *Tracker) WithClock(c Clock) *Tracker {
	tr.now = c
	return tr
}

// Start opens a tracking session on the task. Any other task currently
// Active is stopped first, so that exactly one open session exists after
// Start returns. Starting an already-Active task is a no-op.
func (tr *Tracker) Start(ctx context.Context, id string) (task.Task, error) {
	tk, err := tr.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("start tracking: %w", err)
	}
	if tk.Tracking.IsTracking {
		return tk, nil
	}

	// Stop-then-start inside the one mutation keeps the single-active
	// invariant even if the caller raced another command.
	if err := tr.stopOthers(ctx, id); err != nil {
		return task.Task{}, err
	}

	now := tr.now()
	tk.Tracking.IsTracking = true
	tk.Tracking.SessionStart = &now
	tk.UpdatedAt = now

	if err := tr.store.Update(ctx, tk); err != nil {
		return task.Task{}, fmt.Errorf("start tracking: %w", err)
	}

	tr.log.Debug().Str("task", id).Msg("tracking started")
	return tk, nil
}

// Stop closes the task's open session, folding its duration into the
// accumulated total. Stopping an Idle task is a no-op.
func (tr *Tracker) Stop(ctx context.Context, id string) (task.Task, error) {
	tk, err := tr.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("stop tracking: %w", err)
	}
	if !tk.Tracking.IsTracking {
		return tk, nil
	}

	tr.closeSession(&tk)

	if err := tr.store.Update(ctx, tk); err != nil {
		return task.Task{}, fmt.Errorf("stop tracking: %w", err)
	}

	tr.log.Debug().Str("task", id).Dur("total", tk.Tracking.TotalSpent).Msg("tracking stopped")
	return tk, nil
}

// Toggle starts or stops tracking depending on the task's current state.
func (tr *Tracker) Toggle(ctx context.Context, id string) (task.Task, error) {
	tk, err := tr.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle tracking: %w", err)
	}
	if tk.Tracking.IsTracking {
		return tr.Stop(ctx, id)
	}
	return tr.Start(ctx, id)
}

// AddManual records a synthetic session of the given length. The task
// does not need to be Active, and its tracking state is unchanged.
func (tr *Tracker) AddManual(ctx context.Context, id string, minutes int) (task.Task, error) {
	if minutes <= 0 {
		return task.Task{}, fmt.Errorf("manual time must be positive, got %d minutes", minutes)
	}

	tk, err := tr.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("add manual time: %w", err)
	}

	now := tr.now()
	dur := time.Duration(minutes) * time.Minute
	tk.Tracking.Sessions = append(tk.Tracking.Sessions, task.Session{
		Start:    now,
		End:      now,
		Duration: dur,
		Manual:   true,
	})
	tk.Tracking.TotalSpent += dur
	tk.ActualDuration = int(tk.Tracking.TotalSpent.Seconds())
	tk.UpdatedAt = now

	if err := tr.store.Update(ctx, tk); err != nil {
		return task.Task{}, fmt.Errorf("add manual time: %w", err)
	}

	return tk, nil
}

// Reset hard-clears the task's tracking record. Irreversible.
func (tr *Tracker) Reset(ctx context.Context, id string) (task.Task, error) {
	tk, err := tr.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("reset tracking: %w", err)
	}

	tk.Tracking = task.Tracking{Sessions: []task.Session{}}
	tk.ActualDuration = 0
	tk.UpdatedAt = tr.now()

	if err := tr.store.Update(ctx, tk); err != nil {
		return task.Task{}, fmt.Errorf("reset tracking: %w", err)
	}

	tr.log.Debug().Str("task", id).Msg("tracking reset")
	return tk, nil
}

// Active returns the currently tracking task, or nil when all are Idle.
func (tr *Tracker) Active(ctx context.Context) (*task.Task, error) {
	all, err := tr.store.List(ctx, task.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("find active task: %w", err)
	}
	for i := range all {
		if all[i].Tracking.IsTracking {
			return &all[i], nil
		}
	}
	return nil, nil
}

// StopAll closes any open session. Called on shutdown so tracked time is
// never silently lost when the app exits mid-session.
func (tr *Tracker) StopAll(ctx context.Context) error {
	return tr.stopOthers(ctx, "")
}

// stopOthers closes open sessions on every task except the given ID.
func (tr *Tracker) stopOthers(ctx context.Context, exceptID string) error {
	all, err := tr.store.List(ctx, task.ListFilter{})
	if err != nil {
		return fmt.Errorf("stop open sessions: %w", err)
	}

	for _, other := range all {
		if other.ID == exceptID || !other.Tracking.IsTracking {
			continue
		}
		tr.closeSession(&other)
		if err := tr.store.Update(ctx, other); err != nil {
			return fmt.Errorf("stop open session on %s: %w", other.ID, err)
		}
		tr.log.Debug().Str("task", other.ID).Msg("open session force-stopped")
	}

	return nil
}

// closeSession folds the open session into the task's totals and returns
// it to the Idle state.
func (tr *Tracker) closeSession(tk *task.Task) {
	now := tr.now()
	start := *tk.Tracking.SessionStart
	dur := now.Sub(start)

	tk.Tracking.Sessions = append(tk.Tracking.Sessions, task.Session{
		Start:    start,
		End:      now,
		Duration: dur,
	})
	tk.Tracking.TotalSpent += dur
	tk.Tracking.SessionStart = nil
	tk.Tracking.IsTracking = false
	tk.ActualDuration = int(tk.Tracking.TotalSpent.Seconds())
	tk.UpdatedAt = now
}
