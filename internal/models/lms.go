package models

import "time"

// UserRole partitions which dashboards apply to a user.
type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleTeacher  UserRole = "teacher"
	RoleMentor   UserRole = "mentor"
	RoleInvestor UserRole = "investor"
)

// User is a row of the user dimension table.
type User struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	FullName  string    `db:"fullname" json:"fullname"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Course is a row of the course dimension table.
type Course struct {
	CourseID  int64     `db:"course_id" json:"course_id"`
	FullName  string    `db:"fullname" json:"fullname"`
	Category  string    `db:"category" json:"category"`
	StartDate time.Time `db:"startdate" json:"startdate"`
}

// Enrollment links a user to a course. A user may appear more than once for
// the same course in source data; consumers count distinct user IDs.
type Enrollment struct {
	CourseID  int64     `db:"course_id" json:"course_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	EnrolTime time.Time `db:"enrol_time" json:"enrol_time"`
}

// GradeRecord is one graded item for a learner. Distinct item IDs per course
// define the course-wide progress denominator.
type GradeRecord struct {
	CourseID int64     `db:"course_id" json:"course_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	ItemID   int64     `db:"item_id" json:"item_id"`
	Score    float64   `db:"score" json:"score"`
	MaxScore float64   `db:"maxscore" json:"maxscore"`
	GradedAt time.Time `db:"graded_at" json:"graded_at"`
}

// SubmissionRecord is one expected piece of work. A nil SubmittedAt means the
// work has not been handed in yet (open or missing).
type SubmissionRecord struct {
	CourseID    int64      `db:"course_id" json:"course_id"`
	UserID      int64      `db:"user_id" json:"user_id"`
	ActivityID  int64      `db:"activity_id" json:"activity_id"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at,omitempty"`
	DueDate     time.Time  `db:"duedate" json:"duedate"`
}

// ActivityEvent is a raw platform event, used for recency and the
// learning-hours proxy only.
type ActivityEvent struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	CourseID  int64     `db:"course_id" json:"course_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	EventType string    `db:"event_type" json:"event_type"`
}

// DailyCourseKPI is a per-course daily rollup. The maximum Date across all
// rows anchors every other computation in one dashboard request.
type DailyCourseKPI struct {
	CourseID    int64     `db:"course_id" json:"course_id"`
	Date        time.Time `db:"date" json:"date"`
	ActiveUsers int       `db:"active_users" json:"active_users"`
	Submissions int       `db:"submissions" json:"submissions"`
	Completions int       `db:"completions" json:"completions"`
	AvgGrade    float64   `db:"avg_grade" json:"avg_grade"`
}

// CourseRating aggregates learner ratings for a course. The backing table is
// optional; absence is not an error.
type CourseRating struct {
	CourseID   int64   `db:"course_id" json:"course_id"`
	AvgRating  float64 `db:"avg_rating" json:"avg_rating"`
	NumRatings int     `db:"num_ratings" json:"num_ratings"`
}

// RiskEntry is a derived per-learner risk score. Entries are built fresh per
// dashboard call, ordered descending by RiskPct, and never persisted.
type RiskEntry struct {
	UserID  int64   `json:"user_id"`
	RiskPct float64 `json:"risk_pct"`
}

// Snapshot is a fully materialized, read-only view of the fact and dimension
// tables for one computation. Loaders own the data; the analytics engine only
// borrows it.
type Snapshot struct {
	Users       []User
	Courses     []Course
	Enrollments []Enrollment
	Grades      []GradeRecord
	Submissions []SubmissionRecord
	Events      []ActivityEvent
	DailyKPIs   []DailyCourseKPI

	// Optional tables; empty when the source does not provide them.
	Ratings        []CourseRating
	Ideas          []Idea
	MentorProfiles []MentorProfile
	MentorMatches  []MentorMatch
	PitchScores    []PitchReadiness
}

// CourseByID returns the course row for the given ID.
func (s *Snapshot) CourseByID(courseID int64) (Course, bool) {
	for _, c := range s.Courses {
		if c.CourseID == courseID {
			return c, true
		}
	}
	return Course{}, false
}

// UserByID returns the user row for the given ID.
func (s *Snapshot) UserByID(userID int64) (User, bool) {
	for _, u := range s.Users {
		if u.UserID == userID {
			return u, true
		}
	}
	return User{}, false
}
