package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-insights-api/internal/service"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
	"github.com/noah-isme/lms-insights-api/pkg/response"
)

type exportService interface {
	CourseRiskReport(ctx context.Context, req service.ExportRequest) (*service.ExportResult, error)
}

// ExportHandler serves downloadable course risk reports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// CourseRiskReport godoc
// @Summary Export the per-course risk roster
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param course_id path int true "Course ID"
// @Param format query string false "csv or pdf (defaults to csv)"
// @Success 200 {file} file
// @Router /teacher/course/{course_id}/dashboard/export [get]
func (h *ExportHandler) CourseRiskReport(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.Query("format")))
	if format == "" {
		format = service.ExportFormatCSV
	}

	result, err := h.service.CourseRiskReport(c.Request.Context(), service.ExportRequest{
		CourseID: courseID,
		Format:   format,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Payload)
}
