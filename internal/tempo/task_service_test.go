package tempo

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tempo/internal/core/notify"
	"github.com/colonyops/tempo/internal/core/task"
)

// memStore is an in-memory task.Store for service tests.
type memStore struct {
	tasks map[string]task.Task
}

func newMemStore(tasks ...task.Task) *memStore {
	s := &memStore{tasks: make(map[string]task.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *memStore) Create(_ context.Context, t *task.Task) error {
	s.tasks[t.ID] = *t
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (task.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (s *memStore) List(_ context.Context, _ task.ListFilter) ([]task.Task, error) {
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Update(_ context.Context, t task.Task) error {
	if _, ok := s.tasks[t.ID]; !ok {
		return task.ErrNotFound
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// memNotifyStore is an in-memory notify.Store capturing appends.
type memNotifyStore struct {
	entries []notify.Notification
}

func (s *memNotifyStore) Append(_ context.Context, n notify.Notification) error {
	s.entries = append([]notify.Notification{n}, s.entries...)
	return nil
}

func (s *memNotifyStore) List(_ context.Context) ([]notify.Notification, error) {
	return s.entries, nil
}

func (s *memNotifyStore) MarkRead(_ context.Context, _ string) error { return nil }
func (s *memNotifyStore) MarkAllRead(_ context.Context) error        { return nil }
func (s *memNotifyStore) ClearAll(_ context.Context) error           { return nil }
func (s *memNotifyStore) Unread(_ context.Context) (int, error)      { return len(s.entries), nil }

type staticSettings struct {
	settings notify.Settings
}

func (s staticSettings) Get(_ context.Context) (notify.Settings, error) {
	return s.settings, nil
}

func newService(store task.Store, now time.Time) (*TaskService, *memNotifyStore) {
	log := zerolog.Nop()
	notifications := &memNotifyStore{}
	settings := staticSettings{settings: notify.DefaultSettings()}

	scheduler := notify.NewScheduler(notify.NewEngine(log), store, settings, notifications, nil, nil, log)
	svc := NewTaskService(store, settings, scheduler, log).WithClock(func() time.Time { return now })
	return svc, notifications
}

func testTask(id, day, start, end string) task.Task {
	return task.Task{
		ID:        id,
		Title:     id,
		Day:       task.Day(day),
		Date:      "2026-03-10",
		StartTime: start,
		EndTime:   end,
	}
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	store := newMemStore()
	svc, _ := newService(store, now)

	got, err := svc.Create(ctx, task.Task{
		Title:     "deep work",
		StartTime: "09:00",
		EndTime:   "11:00",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "2026-03-10", got.Date)
	assert.Equal(t, task.Tuesday, got.Day)
	assert.Equal(t, task.PriorityMedium, got.Priority)
	assert.Equal(t, now, got.CreatedAt)

	stored, err := store.Get(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "deep work", stored.Title)
}

func TestTaskService_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := newService(newMemStore(), now)

	_, err := svc.Create(ctx, task.Task{Title: "backwards", Day: task.Monday, StartTime: "11:00", EndTime: "09:00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after start time")
}

func TestTaskService_CreateConflict(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	store := newMemStore(testTask("standup", "monday", "09:00", "10:00"))
	svc, _ := newService(store, now)

	_, err := svc.Create(ctx, task.Task{Title: "overlap", Day: task.Monday, StartTime: "09:30", EndTime: "10:30"})
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, "standup", conflict.Conflicts[0].Title)
	assert.Contains(t, err.Error(), "standup")

	// Adjacent windows do not conflict.
	_, err = svc.Create(ctx, task.Task{Title: "adjacent", Day: task.Monday, StartTime: "10:00", EndTime: "11:00"})
	require.NoError(t, err)
}

func TestTaskService_UpdateExcludesSelf(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	store := newMemStore(testTask("a", "monday", "09:00", "10:00"))
	svc, _ := newService(store, now)

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)

	// Re-saving the same window must not conflict with itself.
	got.Title = "renamed"
	updated, err := svc.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
}

func TestTaskService_Move(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	store := newMemStore(
		testTask("a", "monday", "09:00", "10:00"),
		testTask("b", "tuesday", "09:00", "10:00"),
	)
	svc, _ := newService(store, now)

	// Moving into an occupied slot fails and leaves the task in place.
	_, err := svc.Move(ctx, "a", task.Tuesday, "", "")
	require.Error(t, err)

	unchanged, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, task.Monday, unchanged.Day)

	// Moving with a new window succeeds.
	moved, err := svc.Move(ctx, "a", task.Tuesday, "10:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, task.Tuesday, moved.Day)
	assert.Equal(t, "10:00", moved.StartTime)
}

func TestTaskService_SetCompleted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	store := newMemStore(testTask("a", "monday", "09:00", "10:00"))
	svc, notifications := newService(store, now)

	got, err := svc.SetCompleted(ctx, "a", true)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, now, *got.CompletedAt)

	require.Len(t, notifications.entries, 1)
	assert.Equal(t, notify.TypeCompletion, notifications.entries[0].Type)
	assert.Equal(t, "a", notifications.entries[0].TaskID)

	// Completing an already-complete task does not re-notify.
	_, err = svc.SetCompleted(ctx, "a", true)
	require.NoError(t, err)
	assert.Len(t, notifications.entries, 1)

	// Reopening clears the stamp and stays silent.
	got, err = svc.SetCompleted(ctx, "a", false)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
	assert.Len(t, notifications.entries, 1)
}
