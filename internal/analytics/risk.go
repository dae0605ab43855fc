package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

const (
	// DefaultAtRiskThreshold classifies a learner as at risk when their
	// composite score exceeds it strictly; exactly 60 is not at risk.
	DefaultAtRiskThreshold = 60.0

	// missingRiskStep saturates the missing-work sub-score at 10 items.
	missingRiskStep = 10

	// inactivitySentinelDays stands in for learners with no events in
	// scope. It is a fixed sentinel, not a computed value, and maps to an
	// inactivity sub-score of exactly 100.
	inactivitySentinelDays = 30
)

// LearnerRisk combines grade performance, missing-work count and inactivity
// into one composite score in [0,100]: the arithmetic mean of three equally
// weighted sub-scores.
//
// A learner with no graded work scores a grade risk of 100; ungraded work is
// treated as a risk signal, identically to work graded 0%. That conflation is
// observable upstream behavior carried forward on purpose.
func LearnerRisk(userID int64, scope Scope, grades []models.GradeRecord, subs []models.SubmissionRecord, events []models.ActivityEvent, asOf time.Time) float64 {
	gradeRisk := 100 - AvgGradePct(LearnerGrades(grades, userID, scope))

	missingCount := 0
	for _, sub := range subs {
		if sub.UserID != userID || sub.SubmittedAt != nil || !scope.Contains(sub.CourseID) {
			continue
		}
		if DateOf(sub.DueDate).Before(asOf) {
			missingCount++
		}
	}
	missingRisk := float64(missingCount * missingRiskStep)
	if missingRisk > 100 {
		missingRisk = 100
	}

	inactivityDays := float64(inactivitySentinelDays)
	if last, ok := LastEventDate(events, userID, scope); ok {
		inactivityDays = asOf.Sub(last).Hours() / 24
	}
	inactivityRisk := inactivityDays / inactivitySentinelDays * 100
	if inactivityRisk > 100 {
		inactivityRisk = 100
	}

	return (gradeRisk + missingRisk + inactivityRisk) / 3
}

// CohortRisk scores every learner in the cohort and returns the entries
// ordered descending by risk, ties kept in cohort order. Each learner's score
// is independent of the others; the loop is safe to fan out if cohorts ever
// grow large enough to warrant it.
func CohortRisk(cohort []int64, scope Scope, grades []models.GradeRecord, subs []models.SubmissionRecord, events []models.ActivityEvent, asOf time.Time) []models.RiskEntry {
	entries := make([]models.RiskEntry, 0, len(cohort))
	for _, userID := range cohort {
		entries = append(entries, models.RiskEntry{
			UserID:  userID,
			RiskPct: LearnerRisk(userID, scope, grades, subs, events, asOf),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RiskPct > entries[j].RiskPct
	})
	return entries
}

// AtRisk counts entries strictly above the threshold and the share of the
// cohort they represent. An empty cohort yields a percentage of 0, not NaN.
func AtRisk(entries []models.RiskEntry, threshold float64) (count int, pct float64) {
	for _, e := range entries {
		if e.RiskPct > threshold {
			count++
		}
	}
	if len(entries) == 0 {
		return 0, 0
	}
	return count, float64(count) / float64(len(entries)) * 100
}

// TopRisk returns the first n entries of an already ordered risk listing.
func TopRisk(entries []models.RiskEntry, n int) []models.RiskEntry {
	if n < 0 {
		n = 0
	}
	if n > len(entries) {
		n = len(entries)
	}
	top := make([]models.RiskEntry, n)
	copy(top, entries[:n])
	return top
}

// LastEventDate returns the calendar date of the learner's most recent event
// within the scope, and whether any event exists.
func LastEventDate(events []models.ActivityEvent, userID int64, scope Scope) (time.Time, bool) {
	var last time.Time
	found := false
	for _, ev := range events {
		if ev.UserID != userID || !scope.Contains(ev.CourseID) {
			continue
		}
		if !found || ev.Timestamp.After(last) {
			last = ev.Timestamp
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return DateOf(last), true
}
