package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-insights-api/internal/analytics"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
	"github.com/noah-isme/lms-insights-api/pkg/export"
)

// Export formats accepted by the report endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportRequest describes one course risk report.
type ExportRequest struct {
	CourseID int64  `validate:"required,gt=0"`
	Format   string `validate:"required,oneof=csv pdf"`
}

// ExportResult carries the rendered report bytes and response headers.
type ExportResult struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// ExportService renders the per-course risk roster as a downloadable report.
type ExportService struct {
	snapshots SnapshotProvider
	validate  *validator.Validate
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	now       func() time.Time
	cfg       DashboardServiceConfig
}

// NewExportService constructs an ExportService sharing the dashboard tuning.
func NewExportService(snapshots SnapshotProvider, logger *zap.Logger, cfg DashboardServiceConfig) *ExportService {
	if cfg.AtRiskThreshold <= 0 {
		cfg.AtRiskThreshold = analytics.DefaultAtRiskThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		snapshots: snapshots,
		validate:  validator.New(),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// CourseRiskReport renders the risk roster for one course in the requested
// format. Every enrolled learner appears, sorted by descending risk.
func (s *ExportService) CourseRiskReport(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export request")
	}

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	course, ok := snap.CourseByID(req.CourseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course_id not found")
	}

	asOf := analytics.AsOf(snap.DailyKPIs, s.now)
	scope := analytics.ScopeOf(req.CourseID)
	cohort := analytics.DistinctEnrolled(snap.Enrollments, scope)
	entries := analytics.CohortRisk(cohort, scope, snap.Grades, snap.Submissions, snap.Events, asOf)
	missing := analytics.MissingByLearner(snap.Submissions, scope, asOf)

	dataset := export.Dataset{Headers: []string{"user_id", "risk_pct", "missing_count"}}
	for _, e := range entries {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"user_id":       strconv.FormatInt(e.UserID, 10),
			"risk_pct":      strconv.FormatFloat(analytics.Round1(e.RiskPct), 'f', 1, 64),
			"missing_count": strconv.Itoa(missing[e.UserID]),
		})
	}

	stamp := asOf.Format("2006-01-02")
	switch req.Format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv report")
		}
		return &ExportResult{
			Payload:     payload,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("course_%d_risk_%s.csv", req.CourseID, stamp),
		}, nil
	case ExportFormatPDF:
		title := fmt.Sprintf("Risk report - %s", course.FullName)
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf report")
		}
		return &ExportResult{
			Payload:     payload,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("course_%d_risk_%s.pdf", req.CourseID, stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
