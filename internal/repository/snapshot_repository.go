package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-insights-api/internal/models"
)

// Table queries for the snapshot. Deterministic ordering keeps downstream
// tie-breaks (stable sorts over input order) reproducible across loads.
const (
	userQuery       = `SELECT user_id, fullname, role, created_at FROM user_dim ORDER BY user_id`
	courseQuery     = `SELECT course_id, fullname, category, startdate FROM course_dim ORDER BY course_id`
	enrolQuery      = `SELECT course_id, user_id, enrol_time FROM enrol_fact ORDER BY enrol_time, course_id, user_id`
	gradeQuery      = `SELECT course_id, user_id, item_id, score, maxscore, graded_at FROM grade_fact ORDER BY graded_at, course_id, user_id, item_id`
	submissionQuery = `SELECT course_id, user_id, activity_id, submitted_at, duedate FROM submission_fact ORDER BY duedate, course_id, user_id, activity_id`
	eventQuery      = `SELECT user_id, course_id, timestamp, event_type FROM event_log_staging ORDER BY timestamp, user_id`
	dailyKPIQuery   = `SELECT course_id, date, active_users, submissions, completions, avg_grade FROM daily_course_kpi ORDER BY date, course_id`

	ratingQuery     = `SELECT course_id, avg_rating, num_ratings FROM course_rating ORDER BY course_id`
	ideaQuery       = `SELECT idea_id, student_id, domain_code, title, stage, created_at FROM idea_dim ORDER BY idea_id`
	mentorQuery     = `SELECT mentor_id, primary_domain_code, years_exp FROM mentor_profile ORDER BY mentor_id`
	matchQuery      = `SELECT match_id, idea_id, mentor_id, matched_at, status FROM mentor_match ORDER BY match_id`
	pitchScoreQuery = `SELECT match_id, score_0_100, rated_at FROM pitch_readiness ORDER BY match_id`
)

// PostgresSnapshotRepository materializes the fact and dimension tables into
// an in-memory snapshot for one dashboard computation.
type PostgresSnapshotRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresSnapshotRepository constructs the repository.
func NewPostgresSnapshotRepository(db *sqlx.DB, logger *zap.Logger) *PostgresSnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresSnapshotRepository{db: db, logger: logger}
}

// Load fetches every table. The seven core tables are required; the rating
// and mentor tables are optional and absence is informational, not an error.
func (r *PostgresSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	if err := r.db.SelectContext(ctx, &snap.Users, userQuery); err != nil {
		return nil, fmt.Errorf("load user_dim: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Courses, courseQuery); err != nil {
		return nil, fmt.Errorf("load course_dim: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Enrollments, enrolQuery); err != nil {
		return nil, fmt.Errorf("load enrol_fact: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Grades, gradeQuery); err != nil {
		return nil, fmt.Errorf("load grade_fact: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Submissions, submissionQuery); err != nil {
		return nil, fmt.Errorf("load submission_fact: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.Events, eventQuery); err != nil {
		return nil, fmt.Errorf("load event_log_staging: %w", err)
	}
	if err := r.db.SelectContext(ctx, &snap.DailyKPIs, dailyKPIQuery); err != nil {
		return nil, fmt.Errorf("load daily_course_kpi: %w", err)
	}

	if err := r.loadOptional(ctx, &snap.Ratings, ratingQuery, "course_rating"); err != nil {
		return nil, err
	}
	if err := r.loadOptional(ctx, &snap.Ideas, ideaQuery, "idea_dim"); err != nil {
		return nil, err
	}
	if err := r.loadOptional(ctx, &snap.MentorProfiles, mentorQuery, "mentor_profile"); err != nil {
		return nil, err
	}
	if err := r.loadOptional(ctx, &snap.MentorMatches, matchQuery, "mentor_match"); err != nil {
		return nil, err
	}
	if err := r.loadOptional(ctx, &snap.PitchScores, pitchScoreQuery, "pitch_readiness"); err != nil {
		return nil, err
	}

	return snap, nil
}

// Source labels this provider for metrics.
func (r *PostgresSnapshotRepository) Source() string {
	return "postgres"
}

func (r *PostgresSnapshotRepository) loadOptional(ctx context.Context, dest interface{}, query, table string) error {
	if err := r.db.SelectContext(ctx, dest, query); err != nil {
		if isUndefinedTable(err) {
			r.logger.Info("optional table absent", zap.String("table", table))
			return nil
		}
		return fmt.Errorf("load %s: %w", table, err)
	}
	return nil
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "42P01"
}
