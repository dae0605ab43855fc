package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

// gradeKey is the composite join key between submissions and grade rows; a
// submission's activity corresponds to a grade item.
type gradeKey struct {
	courseID int64
	userID   int64
	itemID   int64
}

// UngradedOverdueCount counts submissions that were handed in, are past due,
// and have no matching grade row. The match is a hash-based left-exclusive
// join keyed on (course, user, activity==item).
func UngradedOverdueCount(subs []models.SubmissionRecord, grades []models.GradeRecord, scope Scope, asOf time.Time) int {
	graded := make(map[gradeKey]struct{}, len(grades))
	for _, g := range grades {
		if scope.Contains(g.CourseID) {
			graded[gradeKey{g.CourseID, g.UserID, g.ItemID}] = struct{}{}
		}
	}

	count := 0
	for _, sub := range subs {
		if sub.SubmittedAt == nil || !scope.Contains(sub.CourseID) {
			continue
		}
		if !DateOf(sub.DueDate).Before(asOf) {
			continue
		}
		if _, ok := graded[gradeKey{sub.CourseID, sub.UserID, sub.ActivityID}]; !ok {
			count++
		}
	}
	return count
}

// LearningHoursProxy estimates average session length from event timestamp
// gaps: the mean, over consecutive same-user event pairs with a gap strictly
// between 1 and 30 minutes, of the gap length in hours, rounded to two
// decimals. Gaps outside that band are discarded as noise (separate sessions
// or automated bursts). Returns 0 when no gap qualifies.
//
// A nil cohort means every user; events outside the scope are ignored.
func LearningHoursProxy(events []models.ActivityEvent, cohort map[int64]struct{}, scope Scope) float64 {
	filtered := make([]models.ActivityEvent, 0, len(events))
	for _, ev := range events {
		if cohort != nil {
			if _, ok := cohort[ev.UserID]; !ok {
				continue
			}
		}
		if !scope.Contains(ev.CourseID) {
			continue
		}
		filtered = append(filtered, ev)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].UserID != filtered[j].UserID {
			return filtered[i].UserID < filtered[j].UserID
		}
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})

	var sumMinutes float64
	var n int
	for i := 1; i < len(filtered); i++ {
		if filtered[i].UserID != filtered[i-1].UserID {
			continue
		}
		gap := filtered[i].Timestamp.Sub(filtered[i-1].Timestamp).Minutes()
		if gap > 1 && gap < 30 {
			sumMinutes += gap
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return Round2(sumMinutes / float64(n) / 60)
}

// RatingAggregate looks up the rating rollup for a course, defaulting to
// (0, 0) when the optional ratings table has no row for it.
func RatingAggregate(ratings []models.CourseRating, courseID int64) models.CourseRating {
	for _, r := range ratings {
		if r.CourseID == courseID {
			return r
		}
	}
	return models.CourseRating{CourseID: courseID}
}

// InactiveLearnerCount counts cohort members whose most recent event (in any
// course) is older than asOf minus the window. Learners with no events at all
// are not counted; only observed-then-lapsed activity qualifies.
func InactiveLearnerCount(events []models.ActivityEvent, cohort []int64, asOf time.Time, windowDays int) int {
	cutoff := asOf.AddDate(0, 0, -windowDays)
	count := 0
	for _, userID := range cohort {
		if last, ok := LastEventDate(events, userID, nil); ok && last.Before(cutoff) {
			count++
		}
	}
	return count
}

// DistinctEnrolled returns the distinct user IDs enrolled in the scope's
// courses, in first-seen enrollment order (set semantics over row count).
func DistinctEnrolled(enrollments []models.Enrollment, scope Scope) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, e := range enrollments {
		if !scope.Contains(e.CourseID) {
			continue
		}
		if _, ok := seen[e.UserID]; ok {
			continue
		}
		seen[e.UserID] = struct{}{}
		out = append(out, e.UserID)
	}
	return out
}

// EnrolledCourses returns the distinct course IDs a user is enrolled in, in
// first-seen order.
func EnrolledCourses(enrollments []models.Enrollment, userID int64) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, e := range enrollments {
		if e.UserID != userID {
			continue
		}
		if _, ok := seen[e.CourseID]; ok {
			continue
		}
		seen[e.CourseID] = struct{}{}
		out = append(out, e.CourseID)
	}
	return out
}
