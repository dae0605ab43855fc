package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-insights-api/internal/analytics"
	"github.com/noah-isme/lms-insights-api/internal/dto"
	"github.com/noah-isme/lms-insights-api/internal/models"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
)

// Mentor dashboard tuning, mirroring the mentoring programme's definitions.
const (
	mentorReadyThreshold = 80
	mentorNewIdeaDays    = 7
)

// SnapshotProvider materializes the fact and dimension tables for one
// computation.
type SnapshotProvider interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Source() string
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	AtRiskThreshold   float64
	LookaheadDays     int
	InactiveAfterDays int
	RiskTopSize       int
}

// DashboardService composes the analytics engine into the three dashboard
// payloads plus the mentor summary. Every method derives the as-of date once
// and threads it through all sub-calculations, so one request never spans two
// day boundaries.
type DashboardService struct {
	snapshots SnapshotProvider
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Snapshots SnapshotProvider
	Cache     *CacheService
	Metrics   *MetricsService
	Logger    *zap.Logger
	Config    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.AtRiskThreshold <= 0 {
		cfg.AtRiskThreshold = analytics.DefaultAtRiskThreshold
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = analytics.DefaultLookaheadDays
	}
	if cfg.InactiveAfterDays <= 0 {
		cfg.InactiveAfterDays = 7
	}
	if cfg.RiskTopSize <= 0 {
		cfg.RiskTopSize = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		snapshots: params.Snapshots,
		cache:     params.Cache,
		metrics:   params.Metrics,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Student returns the per-learner dashboard and indicates cache utilisation.
func (s *DashboardService) Student(ctx context.Context, userID, courseID int64) (*dto.StudentDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dash:student:%d:%d", userID, courseID)
	var cached dto.StudentDashboardResponse
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return &cached, true, nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, false, err
	}

	summary, err := s.composeStudent(snap, userID, courseID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// TeacherCourse returns the per-course teacher dashboard.
func (s *DashboardService) TeacherCourse(ctx context.Context, courseID int64) (*dto.TeacherCourseDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dash:teacher:course:%d", courseID)
	var cached dto.TeacherCourseDashboardResponse
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return &cached, true, nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, false, err
	}

	summary, err := s.composeTeacherCourse(snap, courseID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// TeacherOverall returns the cross-course teacher dashboard.
func (s *DashboardService) TeacherOverall(ctx context.Context, teacherID int64) (*dto.TeacherOverallDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dash:teacher:overall:%d", teacherID)
	var cached dto.TeacherOverallDashboardResponse
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return &cached, true, nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, false, err
	}

	summary, err := s.composeTeacherOverall(snap, teacherID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

// Mentor returns the mentor programme summary.
func (s *DashboardService) Mentor(ctx context.Context, mentorID int64) (*dto.MentorDashboardResponse, bool, error) {
	cacheKey := fmt.Sprintf("dash:mentor:%d", mentorID)
	var cached dto.MentorDashboardResponse
	if hit, err := s.tryCache(ctx, cacheKey, &cached); err != nil {
		return nil, false, err
	} else if hit {
		return &cached, true, nil
	}

	snap, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, false, err
	}

	summary, err := s.composeMentor(snap, mentorID)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) composeStudent(snap *models.Snapshot, userID, courseID int64) (*dto.StudentDashboardResponse, error) {
	if _, ok := snap.UserByID(userID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user_id not found")
	}
	course, ok := snap.CourseByID(courseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course_id not found")
	}

	asOf := analytics.AsOf(snap.DailyKPIs, s.now)

	progress := analytics.ProgressPct(courseID, userID, snap.Grades, snap.Submissions)
	avgGrade := analytics.AvgGradePct(analytics.LearnerGrades(snap.Grades, userID, analytics.ScopeOf(courseID)))

	// Task lists span every course the learner has open work in, not just
	// the requested one.
	missing, dueSoon := analytics.ClassifyTasks(snap.Submissions, userID, asOf, s.cfg.LookaheadDays)

	courseNames := make(map[int64]string, len(snap.Courses))
	for _, c := range snap.Courses {
		courseNames[c.CourseID] = c.FullName
	}

	summary := &dto.StudentDashboardResponse{
		CourseID:     courseID,
		CourseName:   course.FullName,
		ProgressPct:  analytics.Round1(progress),
		AvgGradePct:  analytics.Round1(avgGrade),
		DueSoonCount: len(dueSoon),
		MissingCount: len(missing),
		MissingTasks: taskItems(missing, courseNames),
		DueSoonTasks: taskItems(dueSoon, courseNames),
	}

	if last, ok := analytics.LastEventDate(snap.Events, userID, nil); ok {
		lastActive := last.Format("2006-01-02")
		daysInactive := int(asOf.Sub(last).Hours() / 24)
		summary.LastActive = &lastActive
		summary.DaysInactive = &daysInactive
	}

	return summary, nil
}

func (s *DashboardService) composeTeacherCourse(snap *models.Snapshot, courseID int64) (*dto.TeacherCourseDashboardResponse, error) {
	course, ok := snap.CourseByID(courseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course_id not found")
	}

	asOf := analytics.AsOf(snap.DailyKPIs, s.now)
	scope := analytics.ScopeOf(courseID)

	cohort := analytics.DistinctEnrolled(snap.Enrollments, scope)
	avgGrade := analytics.AvgGradePct(analytics.CourseGrades(snap.Grades, courseID))

	missingPerStudent := analytics.MissingByLearner(snap.Submissions, scope, asOf)
	missingTotal := 0
	for _, n := range missingPerStudent {
		missingTotal += n
	}

	entries := analytics.CohortRisk(cohort, scope, snap.Grades, snap.Submissions, snap.Events, asOf)
	atRiskCount, atRiskPct := analytics.AtRisk(entries, s.cfg.AtRiskThreshold)
	rating := analytics.RatingAggregate(snap.Ratings, courseID)

	return &dto.TeacherCourseDashboardResponse{
		CourseID:           courseID,
		CourseName:         course.FullName,
		TotalStudents:      len(cohort),
		AvgGradePct:        analytics.Round1(avgGrade),
		MissingSubmissions: missingTotal,
		CourseRating: dto.CourseRatingSection{
			AvgRating:  rating.AvgRating,
			NumRatings: rating.NumRatings,
		},
		AtRiskPct:         analytics.Round1(atRiskPct),
		AtRiskCount:       atRiskCount,
		RiskTop:           riskList(analytics.TopRisk(entries, s.cfg.RiskTopSize)),
		MissingPerStudent: missingPerStudent,
	}, nil
}

func (s *DashboardService) composeTeacherOverall(snap *models.Snapshot, teacherID int64) (*dto.TeacherOverallDashboardResponse, error) {
	teacher, ok := snap.UserByID(teacherID)
	if !ok || teacher.Role != models.RoleTeacher {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher_id not found")
	}

	asOf := analytics.AsOf(snap.DailyKPIs, s.now)

	// Demo assumption carried from the source data: a teacher manages the
	// courses they are enrolled in.
	teacherCourses := analytics.EnrolledCourses(snap.Enrollments, teacherID)
	scope := analytics.ScopeOf(teacherCourses...)

	students := make(map[int64]struct{})
	for _, u := range snap.Users {
		if u.Role == models.RoleStudent {
			students[u.UserID] = struct{}{}
		}
	}

	var cohort []int64
	for _, userID := range analytics.DistinctEnrolled(snap.Enrollments, scope) {
		if _, ok := students[userID]; ok {
			cohort = append(cohort, userID)
		}
	}

	entries := analytics.CohortRisk(cohort, scope, snap.Grades, snap.Submissions, snap.Events, asOf)
	atRiskCount, atRiskPct := analytics.AtRisk(entries, s.cfg.AtRiskThreshold)

	cohortSet := make(map[int64]struct{}, len(cohort))
	for _, userID := range cohort {
		cohortSet[userID] = struct{}{}
	}

	return &dto.TeacherOverallDashboardResponse{
		TeacherID:           teacherID,
		TotalStudents:       len(cohort),
		TotalCourses:        len(teacherCourses),
		InactiveStudents7d:  analytics.InactiveLearnerCount(snap.Events, cohort, asOf, s.cfg.InactiveAfterDays),
		AtRiskPct:           analytics.Round1(atRiskPct),
		AtRiskCount:         atRiskCount,
		AvgLearningHours:    analytics.LearningHoursProxy(snap.Events, cohortSet, scope),
		UngradedSubmissions: analytics.UngradedOverdueCount(snap.Submissions, snap.Grades, scope, asOf),
		RiskTop:             riskList(analytics.TopRisk(entries, s.cfg.RiskTopSize)),
	}, nil
}

func (s *DashboardService) composeMentor(snap *models.Snapshot, mentorID int64) (*dto.MentorDashboardResponse, error) {
	known := false
	for _, p := range snap.MentorProfiles {
		if p.MentorID == mentorID {
			known = true
			break
		}
	}
	if !known {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor_id not found")
	}

	asOf := analytics.AsOf(snap.DailyKPIs, s.now)
	newIdeaCutoff := asOf.AddDate(0, 0, -mentorNewIdeaDays)

	matchIDs := make(map[int64]struct{})
	ideaIDs := make(map[int64]struct{})
	newIdeas := make(map[int64]struct{})
	for _, m := range snap.MentorMatches {
		if m.MentorID != mentorID {
			continue
		}
		matchIDs[m.MatchID] = struct{}{}
		ideaIDs[m.IdeaID] = struct{}{}
		if !m.MatchedAt.Before(newIdeaCutoff) {
			newIdeas[m.IdeaID] = struct{}{}
		}
	}

	managed := make(map[int64]struct{})
	mentees := make(map[int64]struct{})
	for _, idea := range snap.Ideas {
		if _, ok := ideaIDs[idea.IdeaID]; !ok {
			continue
		}
		managed[idea.IdeaID] = struct{}{}
		mentees[idea.StudentID] = struct{}{}
	}

	dealReady := 0
	for _, p := range snap.PitchScores {
		if _, ok := matchIDs[p.MatchID]; ok && p.Score >= mentorReadyThreshold {
			dealReady++
		}
	}

	return &dto.MentorDashboardResponse{
		MentorID:         mentorID,
		IdeasManaged:     len(managed),
		MenteesManaged:   len(mentees),
		DealReadyIdeas:   dealReady,
		NewIdeasLastDays: mentorNewIdeaDays,
		NewIdeasCount:    len(newIdeas),
		ReadyThreshold:   mentorReadyThreshold,
	}, nil
}

func (s *DashboardService) loadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	start := time.Now()
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveSnapshotLoad(s.snapshots.Source(), time.Since(start))
	}
	return snap, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.cache == nil {
		return false, nil
	}
	return s.cache.Get(ctx, key, dest)
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func taskItems(subs []models.SubmissionRecord, courseNames map[int64]string) []dto.TaskItem {
	items := make([]dto.TaskItem, 0, len(subs))
	for _, sub := range subs {
		items = append(items, dto.TaskItem{
			CourseName: courseNames[sub.CourseID],
			ActivityID: sub.ActivityID,
			DueDate:    sub.DueDate.Format("2006-01-02"),
		})
	}
	return items
}

func riskList(entries []models.RiskEntry) []dto.RiskListEntry {
	list := make([]dto.RiskListEntry, 0, len(entries))
	for _, e := range entries {
		list = append(list, dto.RiskListEntry{UserID: e.UserID, RiskPct: e.RiskPct})
	}
	return list
}
