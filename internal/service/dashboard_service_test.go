package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-insights-api/internal/models"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
)

type stubSnapshotProvider struct {
	snap  *models.Snapshot
	err   error
	loads int
}

func (s *stubSnapshotProvider) Load(context.Context) (*models.Snapshot, error) {
	s.loads++
	return s.snap, s.err
}

func (s *stubSnapshotProvider) Source() string {
	return "stub"
}

type stubCacheRepo struct {
	store map[string][]byte
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{store: map[string][]byte{}}
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(context.Context, string) error {
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

// fixtureSnapshot anchors the as-of date at 2025-10-10 via the KPI table.
func fixtureSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Users: []models.User{
			{UserID: 7, FullName: "Alice", Role: models.RoleStudent},
			{UserID: 8, FullName: "Bob", Role: models.RoleStudent},
			{UserID: 20, FullName: "Carol", Role: models.RoleTeacher},
		},
		Courses: []models.Course{
			{CourseID: 1, FullName: "Intro to Data Science"},
			{CourseID: 2, FullName: "Web Programming"},
		},
		Enrollments: []models.Enrollment{
			{CourseID: 1, UserID: 7},
			{CourseID: 1, UserID: 8},
			{CourseID: 1, UserID: 20},
			{CourseID: 2, UserID: 7},
			{CourseID: 2, UserID: 20},
		},
		Grades: []models.GradeRecord{
			{CourseID: 1, UserID: 7, ItemID: 1, Score: 80, MaxScore: 100},
			{CourseID: 1, UserID: 7, ItemID: 2, Score: 60, MaxScore: 100},
			{CourseID: 1, UserID: 8, ItemID: 1, Score: 40, MaxScore: 100},
		},
		Submissions: []models.SubmissionRecord{
			{CourseID: 1, UserID: 7, ActivityID: 1, SubmittedAt: ptr(day(2025, 10, 1)), DueDate: day(2025, 10, 2)},
			{CourseID: 1, UserID: 7, ActivityID: 2, DueDate: day(2025, 10, 5)},
			{CourseID: 2, UserID: 7, ActivityID: 301, DueDate: day(2025, 10, 12)},
			{CourseID: 2, UserID: 7, ActivityID: 302, SubmittedAt: ptr(day(2025, 10, 5)), DueDate: day(2025, 10, 6)},
			{CourseID: 1, UserID: 8, ActivityID: 2, DueDate: day(2025, 10, 5)},
			{CourseID: 1, UserID: 8, ActivityID: 1, SubmittedAt: ptr(day(2025, 10, 1)), DueDate: day(2025, 10, 2)},
		},
		Events: []models.ActivityEvent{
			{UserID: 7, CourseID: 1, Timestamp: at(2025, 10, 8, 9, 0)},
			{UserID: 7, CourseID: 1, Timestamp: at(2025, 10, 8, 9, 10)},
			{UserID: 8, CourseID: 1, Timestamp: at(2025, 10, 1, 9, 0)},
		},
		DailyKPIs: []models.DailyCourseKPI{
			{CourseID: 1, Date: day(2025, 10, 10)},
		},
		Ratings: []models.CourseRating{
			{CourseID: 1, AvgRating: 4.5, NumRatings: 12},
		},
		Ideas: []models.Idea{
			{IdeaID: 1, StudentID: 7, Title: "Farm marketplace"},
			{IdeaID: 2, StudentID: 8, Title: "Tutoring app"},
		},
		MentorProfiles: []models.MentorProfile{
			{MentorID: 30, PrimaryDomainCode: "AGR", YearsExp: 8},
		},
		MentorMatches: []models.MentorMatch{
			{MatchID: 1, IdeaID: 1, MentorID: 30, MatchedAt: day(2025, 10, 8), Status: "active"},
			{MatchID: 2, IdeaID: 2, MentorID: 30, MatchedAt: day(2025, 9, 1), Status: "active"},
		},
		PitchScores: []models.PitchReadiness{
			{MatchID: 1, Score: 85},
			{MatchID: 2, Score: 70},
		},
	}
}

func newTestService(snap *models.Snapshot, withCache bool) (*DashboardService, *stubSnapshotProvider) {
	provider := &stubSnapshotProvider{snap: snap}
	var cacheSvc *CacheService
	if withCache {
		cacheSvc = NewCacheService(newStubCacheRepo(), nil, time.Minute, nil, true)
	}
	svc := NewDashboardService(DashboardServiceParams{
		Snapshots: provider,
		Cache:     cacheSvc,
	})
	return svc, provider
}

func TestStudentDashboardComposition(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	summary, cacheHit, err := svc.Student(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, int64(1), summary.CourseID)
	assert.Equal(t, "Intro to Data Science", summary.CourseName)
	assert.Equal(t, 50.0, summary.ProgressPct)
	assert.Equal(t, 70.0, summary.AvgGradePct)

	require.Len(t, summary.MissingTasks, 1)
	assert.Equal(t, int64(2), summary.MissingTasks[0].ActivityID)
	assert.Equal(t, "Intro to Data Science", summary.MissingTasks[0].CourseName)
	assert.Equal(t, "2025-10-05", summary.MissingTasks[0].DueDate)

	// Due-soon list reaches into the learner's other course.
	require.Len(t, summary.DueSoonTasks, 1)
	assert.Equal(t, int64(301), summary.DueSoonTasks[0].ActivityID)
	assert.Equal(t, "Web Programming", summary.DueSoonTasks[0].CourseName)

	require.NotNil(t, summary.LastActive)
	assert.Equal(t, "2025-10-08", *summary.LastActive)
	require.NotNil(t, summary.DaysInactive)
	assert.Equal(t, 2, *summary.DaysInactive)
}

func TestStudentDashboardNoEvents(t *testing.T) {
	snap := fixtureSnapshot()
	snap.Events = nil
	svc, _ := newTestService(snap, false)

	summary, _, err := svc.Student(context.Background(), 7, 1)

	require.NoError(t, err)
	assert.Nil(t, summary.LastActive)
	assert.Nil(t, summary.DaysInactive)
}

func TestStudentDashboardUnknownUser(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	_, _, err := svc.Student(context.Background(), 999, 1)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "user_id not found", appErr.Message)
}

func TestStudentDashboardUnknownCourse(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	_, _, err := svc.Student(context.Background(), 7, 999)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "course_id not found", appErr.Message)
}

func TestStudentDashboardCaching(t *testing.T) {
	svc, provider := newTestService(fixtureSnapshot(), true)

	first, hit, err := svc.Student(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := svc.Student(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.loads)
}

func TestTeacherCourseDashboard(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	summary, _, err := svc.TeacherCourse(context.Background(), 1)

	require.NoError(t, err)
	// The cohort is every enrolled user, teacher included.
	assert.Equal(t, 3, summary.TotalStudents)
	assert.Equal(t, 60.0, summary.AvgGradePct)
	assert.Equal(t, 2, summary.MissingSubmissions)
	assert.Equal(t, map[int64]int{7: 1, 8: 1}, summary.MissingPerStudent)
	assert.Equal(t, 4.5, summary.CourseRating.AvgRating)
	assert.Equal(t, 12, summary.CourseRating.NumRatings)

	// Only the event-less teacher row crosses the risk threshold.
	assert.Equal(t, 1, summary.AtRiskCount)
	assert.Equal(t, 33.3, summary.AtRiskPct)
	require.NotEmpty(t, summary.RiskTop)
	assert.Equal(t, int64(20), summary.RiskTop[0].UserID)
}

func TestTeacherCourseDashboardUnknownCourse(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	_, _, err := svc.TeacherCourse(context.Background(), 999)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestTeacherOverallDashboard(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	summary, _, err := svc.TeacherOverall(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, int64(20), summary.TeacherID)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 2, summary.TotalCourses)
	assert.Equal(t, 1, summary.InactiveStudents7d)
	assert.Equal(t, 0, summary.AtRiskCount)
	assert.Equal(t, 0.0, summary.AtRiskPct)
	// One 10-minute gap for user 7: 10/60 rounded to two decimals.
	assert.Equal(t, 0.17, summary.AvgLearningHours)
	// Course 2 has a submitted, overdue activity with no grade row.
	assert.Equal(t, 1, summary.UngradedSubmissions)
	assert.Len(t, summary.RiskTop, 2)
}

func TestTeacherOverallRejectsNonTeacher(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	_, _, err := svc.TeacherOverall(context.Background(), 7)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "teacher_id not found", appErr.Message)
}

func TestMentorDashboard(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	summary, _, err := svc.Mentor(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.IdeasManaged)
	assert.Equal(t, 2, summary.MenteesManaged)
	assert.Equal(t, 1, summary.DealReadyIdeas)
	// Only the match from 2025-10-08 falls inside the 7-day window.
	assert.Equal(t, 1, summary.NewIdeasCount)
	assert.Equal(t, mentorNewIdeaDays, summary.NewIdeasLastDays)
	assert.Equal(t, mentorReadyThreshold, summary.ReadyThreshold)
}

func TestMentorDashboardUnknownMentor(t *testing.T) {
	svc, _ := newTestService(fixtureSnapshot(), false)

	_, _, err := svc.Mentor(context.Background(), 999)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "mentor_id not found", appErr.Message)
}

func TestDashboardSnapshotLoadFailure(t *testing.T) {
	provider := &stubSnapshotProvider{err: appErrors.ErrDataUnavailable}
	svc := NewDashboardService(DashboardServiceParams{Snapshots: provider})

	_, _, err := svc.Student(context.Background(), 7, 1)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
}
