// Package schedule detects conflicts between tasks sharing a day on the
// weekly grid. Validation never fails with an error: a conflict is a
// structured result the caller decides how to act on.
package schedule

import (
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/core/timeutil"
)

// Result is the outcome of a conflict check.
type Result struct {
	OK        bool        `json:"ok"`
	Conflicts []task.Task `json:"conflicts,omitempty"`
}

// Titles returns the titles of conflicting tasks, for user-facing messages.
func (r Result) Titles() []string {
	titles := make([]string, 0, len(r.Conflicts))
	for _, t := range r.Conflicts {
		titles = append(titles, t.Title)
	}
	return titles
}

// CheckConflicts reports every task in all that overlaps the candidate's
// time window on the same day. excludeID skips the candidate itself when
// re-validating an edit or move.
//
// Overlap uses half-open intervals: windows that merely touch at a
// boundary do not conflict. Only tasks on the same day are compared;
// task.Validate rejects overnight windows before they reach this check.
func CheckConflicts(candidate task.Task, all []task.Task, excludeID string) Result {
	candStart := timeutil.ToMinutes(candidate.StartTime)
	candEnd := timeutil.ToMinutes(candidate.EndTime)

	var conflicts []task.Task
	for _, other := range all {
		if other.ID == excludeID || other.Day != candidate.Day {
			continue
		}
		otherStart := timeutil.ToMinutes(other.StartTime)
		otherEnd := timeutil.ToMinutes(other.EndTime)
		if candStart < otherEnd && candEnd > otherStart {
			conflicts = append(conflicts, other)
		}
	}

	return Result{OK: len(conflicts) == 0, Conflicts: conflicts}
}
