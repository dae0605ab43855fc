package dto

// TaskItem is one missing or due-soon piece of work shown to a student.
type TaskItem struct {
	CourseName string `json:"fullname"`
	ActivityID int64  `json:"activity_id"`
	DueDate    string `json:"duedate"`
}

// StudentDashboardResponse is the per-learner dashboard payload. The task
// lists span every course the learner has work in; progress and grade figures
// are scoped to the requested course.
type StudentDashboardResponse struct {
	CourseID     int64      `json:"course_id"`
	CourseName   string     `json:"course_name"`
	ProgressPct  float64    `json:"progress_pct"`
	AvgGradePct  float64    `json:"avg_grade_pct"`
	DueSoonCount int        `json:"due_soon_count"`
	MissingCount int        `json:"missing_count"`
	LastActive   *string    `json:"last_active"`
	DaysInactive *int       `json:"days_inactive"`
	MissingTasks []TaskItem `json:"missing_tasks"`
	DueSoonTasks []TaskItem `json:"due_soon_tasks"`
}

// CourseRatingSection carries the optional rating aggregate.
type CourseRatingSection struct {
	AvgRating  float64 `json:"avg_rating"`
	NumRatings int     `json:"num_ratings"`
}

// RiskListEntry is one row of a risk leaderboard.
type RiskListEntry struct {
	UserID  int64   `json:"user_id"`
	RiskPct float64 `json:"risk_pct"`
}

// TeacherCourseDashboardResponse is the per-course teacher dashboard payload.
type TeacherCourseDashboardResponse struct {
	CourseID           int64               `json:"course_id"`
	CourseName         string              `json:"course_name"`
	TotalStudents      int                 `json:"total_students"`
	AvgGradePct        float64             `json:"avg_grade_pct"`
	MissingSubmissions int                 `json:"missing_submissions"`
	CourseRating       CourseRatingSection `json:"course_rating"`
	AtRiskPct          float64             `json:"at_risk_pct"`
	AtRiskCount        int                 `json:"at_risk_count"`
	RiskTop            []RiskListEntry     `json:"risk_top"`
	MissingPerStudent  map[int64]int       `json:"missing_per_student"`
}

// TeacherOverallDashboardResponse aggregates across every course the teacher
// is enrolled in.
type TeacherOverallDashboardResponse struct {
	TeacherID           int64           `json:"teacher_id"`
	TotalStudents       int             `json:"total_students"`
	TotalCourses        int             `json:"total_courses"`
	InactiveStudents7d  int             `json:"inactive_students_7d"`
	AtRiskPct           float64         `json:"at_risk_pct"`
	AtRiskCount         int             `json:"at_risk_count"`
	AvgLearningHours    float64         `json:"avg_learning_hours"`
	UngradedSubmissions int             `json:"ungraded_submissions"`
	RiskTop             []RiskListEntry `json:"risk_top"`
}

// MentorDashboardResponse summarises a mentor's idea portfolio.
type MentorDashboardResponse struct {
	MentorID         int64 `json:"mentor_id"`
	IdeasManaged     int   `json:"ideas_managed"`
	MenteesManaged   int   `json:"mentees_managed"`
	DealReadyIdeas   int   `json:"deal_ready_ideas"`
	NewIdeasLastDays int   `json:"new_ideas_last_days"`
	NewIdeasCount    int   `json:"new_ideas_count"`
	ReadyThreshold   int   `json:"ready_threshold"`
}
