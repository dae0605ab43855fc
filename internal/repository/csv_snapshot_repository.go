package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-insights-api/internal/models"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
)

// Core CSV files; all must exist in the data directory.
const (
	userFile       = "user_dim.csv"
	courseFile     = "course_dim.csv"
	enrolFile      = "enrol_fact.csv"
	gradeFile      = "grade_fact.csv"
	submissionFile = "submission_fact.csv"
	eventFile      = "event_log_staging.csv"
	dailyKPIFile   = "daily_course_kpi.csv"

	ratingFile     = "course_rating.csv"
	ideaFile       = "idea_dim.csv"
	mentorFile     = "mentor_profile.csv"
	matchFile      = "mentor_match.csv"
	pitchScoreFile = "pitch_readiness.csv"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CSVSnapshotRepository loads the fact and dimension tables from a directory
// of CSV exports. It fails loudly with a data-unavailable error when the
// directory is missing, before any computation can run.
type CSVSnapshotRepository struct {
	dir    string
	logger *zap.Logger
}

// NewCSVSnapshotRepository constructs the repository.
func NewCSVSnapshotRepository(dir string, logger *zap.Logger) *CSVSnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSnapshotRepository{dir: dir, logger: logger}
}

// Load parses every table into typed rows; rows keep file order.
func (r *CSVSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	if info, err := os.Stat(r.dir); err != nil || !info.IsDir() {
		return nil, appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, appErrors.ErrDataUnavailable.Message)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{}

	if err := r.readFile(userFile, true, func(rec record) error {
		snap.Users = append(snap.Users, models.User{
			UserID:    rec.int64At("user_id"),
			FullName:  rec.at("fullname"),
			Role:      models.UserRole(rec.at("role")),
			CreatedAt: rec.timeAt("created_at"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(courseFile, true, func(rec record) error {
		snap.Courses = append(snap.Courses, models.Course{
			CourseID:  rec.int64At("course_id"),
			FullName:  rec.at("fullname"),
			Category:  rec.at("category"),
			StartDate: rec.timeAt("startdate"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(enrolFile, true, func(rec record) error {
		snap.Enrollments = append(snap.Enrollments, models.Enrollment{
			CourseID:  rec.int64At("course_id"),
			UserID:    rec.int64At("user_id"),
			EnrolTime: rec.timeAt("enrol_time"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(gradeFile, true, func(rec record) error {
		snap.Grades = append(snap.Grades, models.GradeRecord{
			CourseID: rec.int64At("course_id"),
			UserID:   rec.int64At("user_id"),
			ItemID:   rec.int64At("item_id"),
			Score:    rec.floatAt("score"),
			MaxScore: rec.floatAt("maxscore"),
			GradedAt: rec.timeAt("graded_at"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(submissionFile, true, func(rec record) error {
		snap.Submissions = append(snap.Submissions, models.SubmissionRecord{
			CourseID:    rec.int64At("course_id"),
			UserID:      rec.int64At("user_id"),
			ActivityID:  rec.int64At("activity_id"),
			SubmittedAt: rec.timePtrAt("submitted_at"),
			DueDate:     rec.timeAt("duedate"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(eventFile, true, func(rec record) error {
		snap.Events = append(snap.Events, models.ActivityEvent{
			UserID:    rec.int64At("user_id"),
			CourseID:  rec.int64At("course_id"),
			Timestamp: rec.timeAt("timestamp"),
			EventType: rec.at("event_type"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(dailyKPIFile, true, func(rec record) error {
		snap.DailyKPIs = append(snap.DailyKPIs, models.DailyCourseKPI{
			CourseID:    rec.int64At("course_id"),
			Date:        rec.timeAt("date"),
			ActiveUsers: rec.intAt("active_users"),
			Submissions: rec.intAt("submissions"),
			Completions: rec.intAt("completions"),
			AvgGrade:    rec.floatAt("avg_grade"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(ratingFile, false, func(rec record) error {
		snap.Ratings = append(snap.Ratings, models.CourseRating{
			CourseID:   rec.int64At("course_id"),
			AvgRating:  rec.floatAt("avg_rating"),
			NumRatings: rec.intAt("num_ratings"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(ideaFile, false, func(rec record) error {
		idea := models.Idea{
			IdeaID:     rec.int64At("idea_id"),
			DomainCode: rec.at("domain_code"),
			Title:      rec.at("title"),
			Stage:      rec.at("stage"),
			CreatedAt:  rec.timeAt("created_at"),
		}
		// Older exports name the column student_userid.
		if rec.has("student_id") {
			idea.StudentID = rec.int64At("student_id")
		} else {
			idea.StudentID = rec.int64At("student_userid")
		}
		snap.Ideas = append(snap.Ideas, idea)
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(mentorFile, false, func(rec record) error {
		snap.MentorProfiles = append(snap.MentorProfiles, models.MentorProfile{
			MentorID:          rec.int64At("mentor_id"),
			PrimaryDomainCode: rec.at("primary_domain_code"),
			YearsExp:          rec.intAt("years_exp"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(matchFile, false, func(rec record) error {
		snap.MentorMatches = append(snap.MentorMatches, models.MentorMatch{
			MatchID:   rec.int64At("match_id"),
			IdeaID:    rec.int64At("idea_id"),
			MentorID:  rec.int64At("mentor_id"),
			MatchedAt: rec.timeAt("matched_at"),
			Status:    rec.at("status"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	if err := r.readFile(pitchScoreFile, false, func(rec record) error {
		snap.PitchScores = append(snap.PitchScores, models.PitchReadiness{
			MatchID: rec.int64At("match_id"),
			Score:   rec.intAt("score_0_100"),
			RatedAt: rec.timeAt("rated_at"),
		})
		return rec.err
	}); err != nil {
		return nil, err
	}

	return snap, nil
}

// Source labels this provider for metrics.
func (r *CSVSnapshotRepository) Source() string {
	return "csv"
}

func (r *CSVSnapshotRepository) readFile(name string, required bool, row func(record) error) error {
	path := filepath.Join(r.dir, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			r.logger.Info("optional table absent", zap.String("file", name))
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrDataUnavailable.Code, appErrors.ErrDataUnavailable.Status, appErrors.ErrDataUnavailable.Message)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("read %s header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[h] = i
	}

	line := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		line++
		rec := record{file: name, line: line, cols: cols, fields: fields}
		if err := row(rec); err != nil {
			return err
		}
	}
}

// record wraps one CSV row with typed, error-accumulating accessors.
type record struct {
	file   string
	line   int
	cols   map[string]int
	fields []string
	err    error
}

func (r *record) has(col string) bool {
	_, ok := r.cols[col]
	return ok
}

func (r *record) at(col string) string {
	idx, ok := r.cols[col]
	if !ok || idx >= len(r.fields) {
		r.fail(col, fmt.Errorf("column missing"))
		return ""
	}
	return r.fields[idx]
}

func (r *record) int64At(col string) int64 {
	raw := r.at(col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *record) intAt(col string) int {
	return int(r.int64At(col))
}

func (r *record) floatAt(col string) float64 {
	raw := r.at(col)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(col, err)
	}
	return v
}

func (r *record) timeAt(col string) time.Time {
	raw := r.at(col)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	r.fail(col, fmt.Errorf("unrecognised time %q", raw))
	return time.Time{}
}

func (r *record) timePtrAt(col string) *time.Time {
	raw := r.at(col)
	if raw == "" {
		return nil
	}
	t := r.timeAt(col)
	return &t
}

func (r *record) fail(col string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s line %d column %s: %w", r.file, r.line, col, err)
	}
}
