package analytics

import (
	"math"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

// ProgressPct computes a learner's completion ratio for a course: distinct
// submitted activities over distinct gradable items in the whole course. The
// denominator deliberately counts every item the course grades, not just the
// ones the learner has grade rows for. Returns 0 when the course has no
// gradable items.
func ProgressPct(courseID, userID int64, grades []models.GradeRecord, subs []models.SubmissionRecord) float64 {
	items := make(map[int64]struct{})
	for _, g := range grades {
		if g.CourseID == courseID {
			items[g.ItemID] = struct{}{}
		}
	}
	if len(items) == 0 {
		return 0
	}

	completed := make(map[int64]struct{})
	for _, sub := range subs {
		if sub.CourseID == courseID && sub.UserID == userID && sub.SubmittedAt != nil {
			completed[sub.ActivityID] = struct{}{}
		}
	}
	return 100 * float64(len(completed)) / float64(len(items))
}

// AvgGradePct is the unweighted mean of score/maxscore over the subset,
// expressed as a percentage. Every row counts equally regardless of its
// maxscore magnitude. Returns 0 for an empty subset.
func AvgGradePct(grades []models.GradeRecord) float64 {
	if len(grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range grades {
		sum += g.Score / g.MaxScore
	}
	return sum / float64(len(grades)) * 100
}

// LearnerGrades filters grade rows down to one learner within the scope.
// A zero userID is not special-cased; it simply matches nothing in practice.
func LearnerGrades(grades []models.GradeRecord, userID int64, scope Scope) []models.GradeRecord {
	var out []models.GradeRecord
	for _, g := range grades {
		if g.UserID == userID && scope.Contains(g.CourseID) {
			out = append(out, g)
		}
	}
	return out
}

// CourseGrades filters grade rows down to a single course.
func CourseGrades(grades []models.GradeRecord, courseID int64) []models.GradeRecord {
	var out []models.GradeRecord
	for _, g := range grades {
		if g.CourseID == courseID {
			out = append(out, g)
		}
	}
	return out
}

// Round1 rounds to one decimal place, the precision dashboards expose for
// percentage figures.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
