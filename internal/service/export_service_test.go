package service

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
)

func TestCourseRiskReportCSV(t *testing.T) {
	provider := &stubSnapshotProvider{snap: fixtureSnapshot()}
	svc := NewExportService(provider, nil, DashboardServiceConfig{})

	result, err := svc.CourseRiskReport(context.Background(), ExportRequest{CourseID: 1, Format: ExportFormatCSV})

	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "course_1_risk_2025-10-10.csv", result.Filename)

	rows, err := csv.NewReader(strings.NewReader(string(result.Payload))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + three cohort members
	assert.Equal(t, []string{"user_id", "risk_pct", "missing_count"}, rows[0])
	// Rows come back ordered by descending risk; the event-less teacher leads.
	assert.Equal(t, "20", rows[1][0])
	assert.Equal(t, "0", rows[1][2])
}

func TestCourseRiskReportPDF(t *testing.T) {
	provider := &stubSnapshotProvider{snap: fixtureSnapshot()}
	svc := NewExportService(provider, nil, DashboardServiceConfig{})

	result, err := svc.CourseRiskReport(context.Background(), ExportRequest{CourseID: 1, Format: ExportFormatPDF})

	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestCourseRiskReportValidation(t *testing.T) {
	provider := &stubSnapshotProvider{snap: fixtureSnapshot()}
	svc := NewExportService(provider, nil, DashboardServiceConfig{})

	_, err := svc.CourseRiskReport(context.Background(), ExportRequest{CourseID: 1, Format: "xlsx"})

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, 0, provider.loads)
}

func TestCourseRiskReportUnknownCourse(t *testing.T) {
	provider := &stubSnapshotProvider{snap: fixtureSnapshot()}
	svc := NewExportService(provider, nil, DashboardServiceConfig{})

	_, err := svc.CourseRiskReport(context.Background(), ExportRequest{CourseID: 999, Format: ExportFormatCSV})

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}
