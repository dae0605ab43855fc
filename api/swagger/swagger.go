package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "LMS Insights API",
        "description": "Risk and progress analytics over LMS fact tables",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Dashboard", "description": "Student, teacher and mentor dashboards"},
        {"name": "Export", "description": "Downloadable course risk reports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Data source unavailable"}
                }
            }
        },
        "/student/{user_id}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Student dashboard",
                "parameters": [
                    {"name": "user_id", "in": "path", "required": true, "type": "integer"},
                    {"name": "course_id", "in": "query", "type": "integer", "default": 1}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown user or course"}
                }
            }
        },
        "/teacher/course/{course_id}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Teacher per-course dashboard",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown course"}
                }
            }
        },
        "/teacher/course/{course_id}/dashboard/export": {
            "get": {
                "tags": ["Export"],
                "summary": "Export the per-course risk roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "404": {"description": "Unknown course"}
                }
            }
        },
        "/teacher/{teacher_id}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Teacher cross-course dashboard",
                "parameters": [
                    {"name": "teacher_id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown teacher"}
                }
            }
        },
        "/mentor/{mentor_id}/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Mentor programme dashboard",
                "parameters": [
                    {"name": "mentor_id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown mentor"}
                }
            }
        }
    },
    "definitions": {
        "TaskItem": {
            "type": "object",
            "properties": {
                "fullname": {"type": "string"},
                "activity_id": {"type": "integer"},
                "duedate": {"type": "string"}
            }
        },
        "StudentDashboard": {
            "type": "object",
            "properties": {
                "course_id": {"type": "integer"},
                "course_name": {"type": "string"},
                "progress_pct": {"type": "number"},
                "avg_grade_pct": {"type": "number"},
                "due_soon_count": {"type": "integer"},
                "missing_count": {"type": "integer"},
                "last_active": {"type": "string"},
                "days_inactive": {"type": "integer"},
                "missing_tasks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TaskItem"}
                },
                "due_soon_tasks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/TaskItem"}
                }
            }
        },
        "RiskListEntry": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "risk_pct": {"type": "number"}
            }
        },
        "TeacherCourseDashboard": {
            "type": "object",
            "properties": {
                "course_id": {"type": "integer"},
                "course_name": {"type": "string"},
                "total_students": {"type": "integer"},
                "avg_grade_pct": {"type": "number"},
                "missing_submissions": {"type": "integer"},
                "course_rating": {"$ref": "#/definitions/CourseRating"},
                "at_risk_pct": {"type": "number"},
                "at_risk_count": {"type": "integer"},
                "risk_top": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RiskListEntry"}
                },
                "missing_per_student": {"type": "object"}
            }
        },
        "CourseRating": {
            "type": "object",
            "properties": {
                "avg_rating": {"type": "number"},
                "num_ratings": {"type": "integer"}
            }
        },
        "TeacherOverallDashboard": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "integer"},
                "total_students": {"type": "integer"},
                "total_courses": {"type": "integer"},
                "inactive_students_7d": {"type": "integer"},
                "at_risk_pct": {"type": "number"},
                "at_risk_count": {"type": "integer"},
                "avg_learning_hours": {"type": "number"},
                "ungraded_submissions": {"type": "integer"},
                "risk_top": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RiskListEntry"}
                }
            }
        },
        "MentorDashboard": {
            "type": "object",
            "properties": {
                "mentor_id": {"type": "integer"},
                "ideas_managed": {"type": "integer"},
                "mentees_managed": {"type": "integer"},
                "deal_ready_ideas": {"type": "integer"},
                "new_ideas_last_days": {"type": "integer"},
                "new_ideas_count": {"type": "integer"},
                "ready_threshold": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
