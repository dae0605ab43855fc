package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/lms-insights-api/internal/dto"
	appErrors "github.com/noah-isme/lms-insights-api/pkg/errors"
)

type fakeDashboardSrv struct {
	studentResp *dto.StudentDashboardResponse
	studentErr  error
	studentHit  bool
	lastStudent struct {
		userID   int64
		courseID int64
	}
	courseResp  *dto.TeacherCourseDashboardResponse
	overallResp *dto.TeacherOverallDashboardResponse
	mentorResp  *dto.MentorDashboardResponse
}

func (f *fakeDashboardSrv) Student(_ context.Context, userID, courseID int64) (*dto.StudentDashboardResponse, bool, error) {
	f.lastStudent.userID = userID
	f.lastStudent.courseID = courseID
	return f.studentResp, f.studentHit, f.studentErr
}

func (f *fakeDashboardSrv) TeacherCourse(context.Context, int64) (*dto.TeacherCourseDashboardResponse, bool, error) {
	return f.courseResp, false, nil
}

func (f *fakeDashboardSrv) TeacherOverall(context.Context, int64) (*dto.TeacherOverallDashboardResponse, bool, error) {
	return f.overallResp, false, nil
}

func (f *fakeDashboardSrv) Mentor(context.Context, int64) (*dto.MentorDashboardResponse, bool, error) {
	return f.mentorResp, false, nil
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error map[string]interface{} `json:"error"`
}

func TestStudentHandlerDefaultsCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		studentResp: &dto.StudentDashboardResponse{CourseID: 1},
		studentHit:  true,
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/7/dashboard", nil)
	c.Params = gin.Params{{Key: "user_id", Value: "7"}}

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), service.lastStudent.userID)
	assert.Equal(t, int64(1), service.lastStudent.courseID)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
}

func TestStudentHandlerCourseQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{studentResp: &dto.StudentDashboardResponse{CourseID: 3}}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/7/dashboard?course_id=3", nil)
	c.Params = gin.Params{{Key: "user_id", Value: "7"}}

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), service.lastStudent.courseID)
}

func TestStudentHandlerRejectsBadIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	for _, tc := range []struct {
		name   string
		param  string
		target string
	}{
		{"non-numeric user", "abc", "/student/abc/dashboard"},
		{"negative user", "-1", "/student/-1/dashboard"},
		{"bad course query", "7", "/student/7/dashboard?course_id=zero"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, tc.target, nil)
			c.Params = gin.Params{{Key: "user_id", Value: tc.param}}

			handler.Student(c)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStudentHandlerPropagatesNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		studentErr: appErrors.Clone(appErrors.ErrNotFound, "user_id not found"),
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/7/dashboard", nil)
	c.Params = gin.Params{{Key: "user_id", Value: "7"}}

	handler.Student(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, "user_id not found", envelope.Error["message"])
}

func TestTeacherCourseHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		courseResp: &dto.TeacherCourseDashboardResponse{CourseID: 2, TotalStudents: 5},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teacher/course/2/dashboard", nil)
	c.Params = gin.Params{{Key: "course_id", Value: "2"}}

	handler.TeacherCourse(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(5), envelope.Data["total_students"])
}

func TestTeacherOverallHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		overallResp: &dto.TeacherOverallDashboardResponse{TeacherID: 20, TotalCourses: 2},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/teacher/20/dashboard", nil)
	c.Params = gin.Params{{Key: "teacher_id", Value: "20"}}

	handler.TeacherOverall(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(2), envelope.Data["total_courses"])
}

func TestMentorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{
		mentorResp: &dto.MentorDashboardResponse{MentorID: 30, IdeasManaged: 4},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/mentor/30/dashboard", nil)
	c.Params = gin.Params{{Key: "mentor_id", Value: "30"}}

	handler.Mentor(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(4), envelope.Data["ideas_managed"])
}
