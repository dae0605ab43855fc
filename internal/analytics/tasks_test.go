package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

func TestClassifyTasksPartition(t *testing.T) {
	asOf := day(2025, 10, 10)
	subs := []models.SubmissionRecord{
		{CourseID: 1, UserID: 7, ActivityID: 101, DueDate: day(2025, 10, 5)},                                      // missing
		{CourseID: 1, UserID: 7, ActivityID: 102, DueDate: day(2025, 10, 10)},                                     // boundary: due-soon
		{CourseID: 1, UserID: 7, ActivityID: 103, DueDate: day(2025, 10, 17)},                                     // boundary: due-soon
		{CourseID: 1, UserID: 7, ActivityID: 104, DueDate: day(2025, 10, 18)},                                     // beyond horizon
		{CourseID: 1, UserID: 7, ActivityID: 105, DueDate: day(2025, 10, 1), SubmittedAt: ptr(day(2025, 10, 3))},  // submitted late
		{CourseID: 1, UserID: 8, ActivityID: 106, DueDate: day(2025, 10, 2)},                                      // other learner
		{CourseID: 2, UserID: 7, ActivityID: 107, DueDate: day(2025, 10, 12), SubmittedAt: ptr(day(2025, 10, 9))}, // submitted
	}

	missing, dueSoon := ClassifyTasks(subs, 7, asOf, 7)

	assert.Len(t, missing, 1)
	assert.Equal(t, int64(101), missing[0].ActivityID)
	assert.Len(t, dueSoon, 2)
	assert.Equal(t, int64(102), dueSoon[0].ActivityID)
	assert.Equal(t, int64(103), dueSoon[1].ActivityID)

	// No row appears in both lists, and submitted rows appear in neither.
	seen := make(map[int64]int)
	for _, sub := range missing {
		seen[sub.ActivityID]++
	}
	for _, sub := range dueSoon {
		seen[sub.ActivityID]++
		assert.Nil(t, sub.SubmittedAt)
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "activity %d classified twice", id)
	}
}

func TestClassifyTasksCrossCourse(t *testing.T) {
	asOf := day(2025, 10, 10)
	subs := []models.SubmissionRecord{
		{CourseID: 1, UserID: 7, ActivityID: 101, DueDate: day(2025, 10, 3)},
		{CourseID: 2, UserID: 7, ActivityID: 201, DueDate: day(2025, 10, 1)},
	}

	missing, _ := ClassifyTasks(subs, 7, asOf, 7)

	// Lists span every course and come back sorted by due date.
	assert.Len(t, missing, 2)
	assert.Equal(t, int64(201), missing[0].ActivityID)
	assert.Equal(t, int64(101), missing[1].ActivityID)
}

func TestClassifyTasksIgnoresTimeOfDay(t *testing.T) {
	asOf := day(2025, 10, 10)
	subs := []models.SubmissionRecord{
		// Late evening on asOf day still counts as due today, not missing.
		{CourseID: 1, UserID: 7, ActivityID: 101, DueDate: at(2025, 10, 10, 23, 45)},
	}

	missing, dueSoon := ClassifyTasks(subs, 7, asOf, 7)

	assert.Empty(t, missing)
	assert.Len(t, dueSoon, 1)
}

func TestMissingByLearner(t *testing.T) {
	asOf := day(2025, 10, 10)
	subs := []models.SubmissionRecord{
		{CourseID: 1, UserID: 7, ActivityID: 101, DueDate: day(2025, 10, 5)},
		{CourseID: 1, UserID: 7, ActivityID: 102, DueDate: day(2025, 10, 6)},
		{CourseID: 1, UserID: 8, ActivityID: 103, DueDate: day(2025, 10, 7)},
		{CourseID: 2, UserID: 9, ActivityID: 104, DueDate: day(2025, 10, 1)},                                     // out of scope
		{CourseID: 1, UserID: 9, ActivityID: 105, DueDate: day(2025, 10, 1), SubmittedAt: ptr(day(2025, 10, 2))}, // submitted
	}

	counts := MissingByLearner(subs, ScopeOf(1), asOf)

	assert.Equal(t, map[int64]int{7: 2, 8: 1}, counts)
}
