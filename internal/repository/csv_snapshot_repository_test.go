package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-insights-api/internal/models"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
)

func writeCSVFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeCoreFiles(t *testing.T, dir string) {
	t.Helper()
	writeCSVFile(t, dir, "user_dim.csv",
		"user_id,fullname,role,created_at\n7,Alice,student,2025-09-01T00:00:00Z\n")
	writeCSVFile(t, dir, "course_dim.csv",
		"course_id,fullname,category,startdate\n1,Intro to Data Science,Informatics,2025-09-01\n")
	writeCSVFile(t, dir, "enrol_fact.csv",
		"course_id,user_id,enrol_time\n1,7,2025-09-02T08:00:00Z\n")
	writeCSVFile(t, dir, "grade_fact.csv",
		"course_id,user_id,item_id,score,maxscore,graded_at\n1,7,101,80,100,2025-10-01T10:00:00Z\n")
	writeCSVFile(t, dir, "submission_fact.csv",
		"course_id,user_id,activity_id,submitted_at,duedate\n"+
			"1,7,101,2025-09-30T18:00:00Z,2025-10-01\n"+
			"1,7,102,,2025-10-05\n")
	writeCSVFile(t, dir, "event_log_staging.csv",
		"user_id,course_id,timestamp,event_type\n7,1,2025-10-08 09:00:00,course_view\n")
	writeCSVFile(t, dir, "daily_course_kpi.csv",
		"course_id,date,active_users,submissions,completions,avg_grade\n1,2025-10-10,5,3,1,72.50\n")
}

func TestCSVSnapshotRepositoryLoad(t *testing.T) {
	dir := t.TempDir()
	writeCoreFiles(t, dir)
	writeCSVFile(t, dir, "course_rating.csv",
		"course_id,avg_rating,num_ratings\n1,4.50,12\n")

	repo := NewCSVSnapshotRepository(dir, nil)
	snap, err := repo.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, models.RoleStudent, snap.Users[0].Role)
	require.Len(t, snap.Submissions, 2)
	assert.NotNil(t, snap.Submissions[0].SubmittedAt)
	assert.Nil(t, snap.Submissions[1].SubmittedAt)
	assert.Equal(t, 9, snap.Events[0].Timestamp.Hour())
	require.Len(t, snap.Ratings, 1)
	assert.Equal(t, 4.5, snap.Ratings[0].AvgRating)

	// Mentor tables are absent; loading still succeeds.
	assert.Empty(t, snap.MentorProfiles)
	assert.Empty(t, snap.Ideas)
}

func TestCSVSnapshotRepositoryIdeaColumnAlias(t *testing.T) {
	dir := t.TempDir()
	writeCoreFiles(t, dir)
	writeCSVFile(t, dir, "idea_dim.csv",
		"idea_id,student_userid,domain_code,title,stage,created_at\n1,7,AGR,Farm marketplace,prototype,2025-10-01\n")

	repo := NewCSVSnapshotRepository(dir, nil)
	snap, err := repo.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, snap.Ideas, 1)
	assert.Equal(t, int64(7), snap.Ideas[0].StudentID)
}

func TestCSVSnapshotRepositoryMissingDir(t *testing.T) {
	repo := NewCSVSnapshotRepository(filepath.Join(t.TempDir(), "nope"), nil)

	_, err := repo.Load(context.Background())

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDataUnavailable.Code, appErr.Code)
}

func TestCSVSnapshotRepositoryMissingRequiredFile(t *testing.T) {
	dir := t.TempDir()
	writeCoreFiles(t, dir)
	require.NoError(t, os.Remove(filepath.Join(dir, "grade_fact.csv")))

	repo := NewCSVSnapshotRepository(dir, nil)
	_, err := repo.Load(context.Background())

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrDataUnavailable.Code, appErr.Code)
}

func TestCSVSnapshotRepositoryBadRow(t *testing.T) {
	dir := t.TempDir()
	writeCoreFiles(t, dir)
	writeCSVFile(t, dir, "grade_fact.csv",
		"course_id,user_id,item_id,score,maxscore,graded_at\n1,seven,101,80,100,2025-10-01T10:00:00Z\n")

	repo := NewCSVSnapshotRepository(dir, nil)
	_, err := repo.Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
}
