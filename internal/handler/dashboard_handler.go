package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-insights-api/internal/dto"
	"github.com/noah-isme/lms-insights-api/internal/middleware"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
	"github.com/noah-isme/lms-insights-api/pkg/response"
)

type dashboardService interface {
	Student(ctx context.Context, userID, courseID int64) (*dto.StudentDashboardResponse, bool, error)
	TeacherCourse(ctx context.Context, courseID int64) (*dto.TeacherCourseDashboardResponse, bool, error)
	TeacherOverall(ctx context.Context, teacherID int64) (*dto.TeacherOverallDashboardResponse, bool, error)
	Mentor(ctx context.Context, mentorID int64) (*dto.MentorDashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Student godoc
// @Summary Student dashboard summary
// @Tags Dashboard
// @Produce json
// @Param user_id path int true "Student user ID"
// @Param course_id query int false "Course ID (defaults to 1)"
// @Success 200 {object} response.Envelope
// @Router /student/{user_id}/dashboard [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}
	courseID := int64(1)
	if raw := strings.TrimSpace(c.Query("course_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_id must be a positive integer"))
			return
		}
		courseID = parsed
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Student(c.Request.Context(), userID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, cacheHit, start)
}

// TeacherCourse godoc
// @Summary Teacher per-course dashboard
// @Tags Dashboard
// @Produce json
// @Param course_id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /teacher/course/{course_id}/dashboard [get]
func (h *DashboardHandler) TeacherCourse(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	courseID, ok := pathID(c, "course_id")
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.TeacherCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, cacheHit, start)
}

// TeacherOverall godoc
// @Summary Teacher cross-course dashboard
// @Tags Dashboard
// @Produce json
// @Param teacher_id path int true "Teacher user ID"
// @Success 200 {object} response.Envelope
// @Router /teacher/{teacher_id}/dashboard [get]
func (h *DashboardHandler) TeacherOverall(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	teacherID, ok := pathID(c, "teacher_id")
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.TeacherOverall(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, cacheHit, start)
}

// Mentor godoc
// @Summary Mentor programme dashboard
// @Tags Dashboard
// @Produce json
// @Param mentor_id path int true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Router /mentor/{mentor_id}/dashboard [get]
func (h *DashboardHandler) Mentor(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	mentorID, ok := pathID(c, "mentor_id")
	if !ok {
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Mentor(c.Request.Context(), mentorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, summary, cacheHit, start)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func respond(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, data, nil, meta)
}
