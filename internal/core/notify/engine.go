package notify

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/core/timeutil"
	"github.com/colonyops/tempo/pkg/randid"
)

// Overdue window: a task is nagged about between 5 and 60 minutes after
// its start time passed.
const (
	overdueMinAge = 5 * time.Minute
	overdueMaxAge = 60 * time.Minute

	// breakSpacing is the rolling window between break reminders.
	breakSpacing = 50 * time.Minute

	// Daily summaries are only worth sending during waking hours.
	summaryHourStart = 8
	summaryHourEnd   = 21

	idLength = 8
)

// Engine evaluates the task collection against the notification rules.
// Evaluate is pure over its inputs: all state it consults is passed in,
// so every tick sees current data rather than a captured snapshot.
type Engine struct {
	log zerolog.Logger
	ids func(int) string
}

// NewEngine creates a rule engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("cmp", "notify-engine").Logger(),
		ids: randid.Generate,
	}
}

// Evaluate runs all rule passes and returns the notifications to emit
// this tick, oldest-intent first. existing is the current notification
// log, newest first; it drives throttling and de-duplication.
//
// A malformed task aborts only its own evaluation, never the tick.
func (e *Engine) Evaluate(now time.Time, tasks []task.Task, s Settings, existing []Notification) []Notification {
	if !s.Enabled {
		return nil
	}

	quiet := s.QuietHours.Contains(now)
	today := task.DayOf(now)

	var emitted []Notification
	emit := func(n Notification) {
		// Overdue is the one type allowed to interrupt quiet hours.
		if quiet && n.Type != TypeOverdue {
			return
		}
		n.ID = e.ids(idLength)
		n.Timestamp = now
		emitted = append(emitted, n)
	}

	// Pass A: upcoming and overdue reminders for today's tasks.
	anyActive := false
	for _, tk := range tasks {
		e.evalTask(func() {
			if tk.Completed || tk.Day != today {
				return
			}
			if timeutil.WindowActive(tk.Date, tk.StartTime, tk.EndTime, now) {
				anyActive = true
			}
			e.evalUpcoming(now, tk, s, existing, emit)
		})
	}

	// Break reminder: at most once per rolling window while something is
	// in its scheduled slot.
	if anyActive && s.BreakReminders && e.breakDue(now, existing) {
		emit(Notification{
			Type:    TypeBreak,
			Message: "You have been at it for a while. Time for a short break?",
		})
	}

	// Pass B: progress milestones for actively tracked tasks.
	for _, tk := range tasks {
		e.evalTask(func() {
			e.evalProgress(now, tk, existing, emitted, emit)
		})
	}

	// Pass C: daily summary.
	if s.DailySummary {
		e.evalSummary(now, today, tasks, existing, emit)
	}

	return emitted
}

// evalTask isolates a single task's evaluation so one malformed record
// cannot take down the whole tick.
func (e *Engine) evalTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Msg("task evaluation panicked, skipping")
		}
	}()
	fn()
}

func (e *Engine) evalUpcoming(now time.Time, tk task.Task, s Settings, existing []Notification, emit func(Notification)) {
	startAt := onToday(now, tk.StartTime)
	diff := startAt.Sub(now)

	switch {
	case diff > 0 && diff <= time.Duration(s.ReminderTiming)*time.Minute:
		if e.reminderCapReached(tk.ID, s, existing) {
			return
		}
		if !shouldSend(tk.ID, TypeReminder, s.ReminderFrequency, existing, now) {
			return
		}
		emit(Notification{
			Type:      TypeReminder,
			TaskID:    tk.ID,
			TaskTitle: tk.Title,
			Message:   fmt.Sprintf("%q starts in %d minutes", tk.Title, int((diff+time.Minute-1)/time.Minute)),
		})

	case diff < -overdueMinAge && diff > -overdueMaxAge:
		if !s.ShowInProgressOverdue && tk.Tracking.IsTracking {
			return
		}
		if e.reminderCapReached(tk.ID, s, existing) {
			return
		}
		if !shouldSend(tk.ID, TypeOverdue, s.OverdueFrequency, existing, now) {
			return
		}
		emit(Notification{
			Type:      TypeOverdue,
			TaskID:    tk.ID,
			TaskTitle: tk.Title,
			Message:   fmt.Sprintf("%q is %d minutes overdue", tk.Title, int(-diff.Minutes())),
		})
	}
}

func (e *Engine) evalProgress(now time.Time, tk task.Task, existing, emitted []Notification, emit func(Notification)) {
	if tk.Completed || !tk.Tracking.IsTracking || tk.EstimatedDuration <= 0 {
		return
	}

	percent := tk.ProgressPercent(now)
	milestone := int(percent/25) * 25
	if milestone > 100 {
		milestone = 100
	}
	if milestone < 25 {
		return
	}
	if hasMilestone(existing, tk.ID, milestone) || hasMilestone(emitted, tk.ID, milestone) {
		return
	}

	emit(Notification{
		Type:      TypeProgress,
		TaskID:    tk.ID,
		TaskTitle: tk.Title,
		Milestone: milestone,
		Message:   fmt.Sprintf("%q is %d%% complete", tk.Title, milestone),
	})
}

func (e *Engine) evalSummary(now time.Time, today task.Day, tasks []task.Task, existing []Notification, emit func(Notification)) {
	hour := now.Hour()
	if hour < summaryHourStart || hour > summaryHourEnd {
		return
	}

	date := now.Format("2006-01-02")
	for _, n := range existing {
		if n.Type == TypeSummary && n.Timestamp.Format("2006-01-02") == date {
			return
		}
	}

	count := 0
	for _, tk := range tasks {
		if !tk.Completed && tk.Day == today {
			count++
		}
	}
	if count == 0 {
		return
	}

	word := "tasks"
	if count == 1 {
		word = "task"
	}
	emit(Notification{
		Type:    TypeSummary,
		Message: fmt.Sprintf("You have %d %s scheduled today", count, word),
	})
}

// reminderCapReached reports whether the task already carries the
// maximum number of unread reminder or overdue notifications.
func (e *Engine) reminderCapReached(taskID string, s Settings, existing []Notification) bool {
	count := 0
	for _, n := range existing {
		if n.Read || n.TaskID != taskID {
			continue
		}
		if n.Type == TypeReminder || n.Type == TypeOverdue {
			count++
		}
	}
	return count >= s.MaxRemindersPerTask
}

// breakDue reports whether the rolling spacing window since the last
// break reminder has elapsed.
func (e *Engine) breakDue(now time.Time, existing []Notification) bool {
	for _, n := range existing {
		if n.Type == TypeBreak {
			return now.Sub(n.Timestamp) >= breakSpacing
		}
	}
	return true
}

// shouldSend applies the per-task throttle. The first occurrence of a
// task+type pair always sends; afterwards the frequency decides. An
// unrecognized frequency defaults to allow, matching settings written
// before validation existed.
func shouldSend(taskID string, typ Type, freq Frequency, existing []Notification, now time.Time) bool {
	var last *Notification
	for i := range existing {
		if existing[i].TaskID == taskID && existing[i].Type == typ {
			last = &existing[i]
			break
		}
	}
	if last == nil {
		return true
	}

	switch freq {
	case FreqOnce:
		return false
	case FreqEvery5, FreqEvery10:
		return now.Sub(last.Timestamp) >= freq.Interval()
	default:
		return true
	}
}

func hasMilestone(ns []Notification, taskID string, milestone int) bool {
	for _, n := range ns {
		if n.Type == TypeProgress && n.TaskID == taskID && n.Milestone == milestone {
			return true
		}
	}
	return false
}

// onToday combines now's calendar date with an HH:MM time of day.
func onToday(now time.Time, hhmm string) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.Add(time.Duration(timeutil.ToMinutes(hhmm)) * time.Minute)
}
