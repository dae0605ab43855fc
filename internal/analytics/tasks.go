package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

// DefaultLookaheadDays is the forward window for due-soon classification.
const DefaultLookaheadDays = 7

// ClassifyTasks partitions a learner's unsubmitted work into missing (past
// due) and due-soon (due within the lookahead window) relative to asOf.
//
// A due date landing exactly on asOf counts as due-soon, not missing, and a
// row with a non-nil SubmittedAt is never classified, even if submitted late.
// Both lists are sorted ascending by due date with ties kept in input order;
// the ordering is user-visible.
func ClassifyTasks(subs []models.SubmissionRecord, userID int64, asOf time.Time, lookaheadDays int) (missing, dueSoon []models.SubmissionRecord) {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}
	horizon := asOf.AddDate(0, 0, lookaheadDays)

	for _, sub := range subs {
		if sub.UserID != userID || sub.SubmittedAt != nil {
			continue
		}
		due := DateOf(sub.DueDate)
		switch {
		case due.Before(asOf):
			missing = append(missing, sub)
		case !due.After(horizon):
			dueSoon = append(dueSoon, sub)
		}
	}

	sortByDueDate(missing)
	sortByDueDate(dueSoon)
	return missing, dueSoon
}

// MissingByLearner counts missing submissions per learner across the scope.
func MissingByLearner(subs []models.SubmissionRecord, scope Scope, asOf time.Time) map[int64]int {
	counts := make(map[int64]int)
	for _, sub := range subs {
		if sub.SubmittedAt != nil || !scope.Contains(sub.CourseID) {
			continue
		}
		if DateOf(sub.DueDate).Before(asOf) {
			counts[sub.UserID]++
		}
	}
	return counts
}

func sortByDueDate(subs []models.SubmissionRecord) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].DueDate.Before(subs[j].DueDate)
	})
}
