package tempo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/schedule"
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/pkg/randid"
)

const taskIDLength = 8

// ConflictError is returned when a create, edit, or move would overlap
// an existing task on the same day.
type ConflictError struct {
	Conflicts []task.Task
}

func (e *ConflictError) Error() string {
	titles := schedule.Result{Conflicts: e.Conflicts}.Titles()
	return fmt.Sprintf("time conflict with: %s", strings.Join(titles, ", "))
}

// TaskService owns task lifecycle operations. Every write that changes
// a task's scheduled window is conflict-checked before it lands.
type TaskService struct {
	store     task.Store
	settings  notify.SettingsSource
	scheduler *notify.Scheduler
	now       func() time.Time
	ids       func(int) string
	log       zerolog.Logger
}

func NewTaskService(store task.Store, settings notify.SettingsSource, scheduler *notify.Scheduler, log zerolog.Logger) *TaskService {
	return &TaskService{
		store:     store,
		settings:  settings,
		scheduler: scheduler,
		now:       time.Now,
		ids:       randid.Generate,
		log:       log.With().Str("cmp", "tasks").Logger(),
	}
}

// WithClock overrides the wall-clock source. Used by tests.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// Get returns a single task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (task.Task, error) {
	return s.store.Get(ctx, id)
}

// List returns tasks matching the filter, in grid order.
func (s *TaskService) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	return s.store.List(ctx, filter)
}

// Create validates and conflict-checks the task, then persists it. A
// missing ID is assigned; a missing date defaults to today.
func (s *TaskService) Create(ctx context.Context, t task.Task) (task.Task, error) {
	now := s.now()

	if t.ID == "" {
		t.ID = s.ids(taskIDLength)
	}
	if t.Date == "" {
		t.Date = now.Format("2006-01-02")
	}
	if t.Day == "" {
		t.Day = task.DayOf(now)
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Normalize()

	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := s.checkConflicts(ctx, t, ""); err != nil {
		return task.Task{}, err
	}

	if err := s.store.Create(ctx, &t); err != nil {
		return task.Task{}, err
	}

	s.log.Debug().Str("id", t.ID).Str("title", t.Title).Msg("task created")
	return t, nil
}

// Update validates and conflict-checks the edited task (excluding
// itself from the check), then persists it.
func (s *TaskService) Update(ctx context.Context, t task.Task) (task.Task, error) {
	t.UpdatedAt = s.now()
	t.Normalize()

	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}
	if err := s.checkConflicts(ctx, t, t.ID); err != nil {
		return task.Task{}, err
	}

	if err := s.store.Update(ctx, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Move reschedules a task to a new day and window. Empty start and end
// keep the current window.
func (s *TaskService) Move(ctx context.Context, id string, day task.Day, start, end string) (task.Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}

	t.Day = day
	if start != "" {
		t.StartTime = start
	}
	if end != "" {
		t.EndTime = end
	}

	return s.Update(ctx, t)
}

// Delete removes a task permanently.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// SetCompleted flips a task's completion state. Marking a task done
// emits a completion notification through the regular delivery path.
func (s *TaskService) SetCompleted(ctx context.Context, id string, done bool) (task.Task, error) {
	t, err := s.store.Get(ctx, id)
	if err != nil {
		return task.Task{}, err
	}

	wasDone := t.Completed
	t.SetCompleted(done, s.now())

	if err := s.store.Update(ctx, t); err != nil {
		return task.Task{}, err
	}

	if done && !wasDone {
		s.emitCompletion(ctx, t)
	}
	return t, nil
}

func (s *TaskService) emitCompletion(ctx context.Context, t task.Task) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		settings = notify.DefaultSettings()
	}
	if !settings.Enabled {
		return
	}

	s.scheduler.Emit(ctx, notify.Notification{
		ID:        s.ids(taskIDLength),
		Type:      notify.TypeCompletion,
		TaskID:    t.ID,
		TaskTitle: t.Title,
		Message:   fmt.Sprintf("Completed: %s", t.Title),
		Timestamp: s.now(),
	}, settings)
}

func (s *TaskService) checkConflicts(ctx context.Context, t task.Task, excludeID string) error {
	all, err := s.store.List(ctx, task.ListFilter{})
	if err != nil {
		return err
	}
	if res := schedule.CheckConflicts(t, all, excludeID); !res.OK {
		return &ConflictError{Conflicts: res.Conflicts}
	}
	return nil
}
