package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/core/timeutil"
)

const tasksKey = "tasks"

// CurrentSchema is the task envelope schema version. Envelopes written
// by older versions (or with no marker at all) are routed through
// Normalize on load so legacy records pick up newer fields.
const CurrentSchema = 2

// taskEnvelope is the stored JSON shape for the task collection.
type taskEnvelope struct {
	Schema int         `json:"schema"`
	Tasks  []task.Task `json:"tasks"`
}

// TaskStore implements task.Store on a Blob.
type TaskStore struct {
	blob Blob
	mu   sync.Mutex
	log  zerolog.Logger
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a blob-backed task store.
func NewTaskStore(blob Blob, log zerolog.Logger) *TaskStore {
	return &TaskStore{
		blob: blob,
		log:  log.With().Str("cmp", "taskstore").Logger(),
	}
}

// Create persists a new task.
func (s *TaskStore) Create(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	t.Normalize()

	env := s.load()
	env.Tasks = append(env.Tasks, *t)
	return s.save(env)
}

// Get returns a single task by ID.
func (s *TaskStore) Get(_ context.Context, id string) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.load().Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, task.ErrNotFound
}

// List returns tasks matching the filter, ordered by day then start time.
func (s *TaskStore) List(_ context.Context, filter task.ListFilter) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]task.Task, 0)
	for _, t := range s.load().Tasks {
		if filter.Day != "" && t.Day != filter.Day {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		out = append(out, t)
	}
	sortTasks(out)
	return out, nil
}

// Update replaces the stored task with the same ID.
func (s *TaskStore) Update(_ context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.load()
	for i := range env.Tasks {
		if env.Tasks[i].ID == t.ID {
			env.Tasks[i] = t
			return s.save(env)
		}
	}
	return task.ErrNotFound
}

// Delete removes a task by ID.
func (s *TaskStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	env := s.load()
	for i := range env.Tasks {
		if env.Tasks[i].ID == id {
			env.Tasks = append(env.Tasks[:i], env.Tasks[i+1:]...)
			return s.save(env)
		}
	}
	return task.ErrNotFound
}

// load reads the task envelope, migrating legacy records. A missing or
// malformed blob degrades to an empty collection; it never fails.
func (s *TaskStore) load() taskEnvelope {
	data, ok := s.blob.Get(tasksKey)
	if !ok {
		return taskEnvelope{Schema: CurrentSchema, Tasks: []task.Task{}}
	}

	var env taskEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Error().Err(err).Msg("malformed task blob, starting empty")
		return taskEnvelope{Schema: CurrentSchema, Tasks: []task.Task{}}
	}

	if env.Schema < CurrentSchema {
		s.log.Info().Int("from", env.Schema).Int("to", CurrentSchema).Msg("migrating task records")
		for i := range env.Tasks {
			env.Tasks[i].Normalize()
		}
		env.Schema = CurrentSchema
	}
	return env
}

func (s *TaskStore) save(env taskEnvelope) error {
	env.Schema = CurrentSchema
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	return s.blob.Set(tasksKey, data)
}

// sortTasks orders by grid day, then start time, then title.
func sortTasks(tasks []task.Task) {
	dayIndex := make(map[task.Day]int, len(task.Days))
	for i, d := range task.Days {
		dayIndex[d] = i
	}

	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if dayIndex[a.Day] != dayIndex[b.Day] {
			return dayIndex[a.Day] < dayIndex[b.Day]
		}
		am, bm := timeutil.ToMinutes(a.StartTime), timeutil.ToMinutes(b.StartTime)
		if am != bm {
			return am < bm
		}
		return a.Title < b.Title
	})
}
