// Package seed produces a self-consistent demo dataset for the analytics
// engine: the seven core fact and dimension tables plus the optional rating
// and mentoring tables, written as CSV files the snapshot loader accepts.
package seed

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/lms-insights-api/internal/models"
	"github.com/noah-isme/lms-insights-api/pkg/export"
)

const itemsPerCourse = 6

// Options controls the dataset shape. The same seed always yields the same
// dataset.
type Options struct {
	Users   int   `validate:"required,gt=0"`
	Courses int   `validate:"required,gt=0"`
	Days    int   `validate:"required,gt=0"`
	Seed    int64 `validate:"required"`
}

// Generator builds snapshots from pseudo-random draws.
type Generator struct {
	opts Options
	rng  *rand.Rand
	end  time.Time
}

var courseNames = []string{
	"Intro to Data Science",
	"Web Programming",
	"Discrete Mathematics",
	"Operating Systems",
	"Product Design",
	"Entrepreneurship 101",
	"Statistics for Business",
	"Machine Learning Basics",
}

var categories = []string{"Informatics", "Business", "Design", "Mathematics"}

var domains = []string{"EDU", "FIN", "AGR", "HLT", "RTL"}

var eventTypes = []string{"course_view", "resource_view", "quiz_attempt", "forum_post"}

// NewGenerator validates the options and prepares a deterministic generator.
// The dataset's last day is anchored to the given end date.
func NewGenerator(opts Options, end time.Time) (*Generator, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid seed options: %w", err)
	}
	return &Generator{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		end:  time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC),
	}, nil
}

// Generate builds the full snapshot in memory.
func (g *Generator) Generate() *models.Snapshot {
	snap := &models.Snapshot{}
	start := g.end.AddDate(0, 0, -(g.opts.Days - 1))

	teacherCount := g.opts.Courses/2 + 1
	mentorCount := 3

	var userID int64
	students := make([]int64, 0, g.opts.Users)
	teachers := make([]int64, 0, teacherCount)
	for i := 0; i < g.opts.Users; i++ {
		userID++
		students = append(students, userID)
		snap.Users = append(snap.Users, models.User{
			UserID:    userID,
			FullName:  fmt.Sprintf("Student %d", userID),
			Role:      models.RoleStudent,
			CreatedAt: start.AddDate(0, 0, -30),
		})
	}
	for i := 0; i < teacherCount; i++ {
		userID++
		teachers = append(teachers, userID)
		snap.Users = append(snap.Users, models.User{
			UserID:    userID,
			FullName:  fmt.Sprintf("Teacher %d", userID),
			Role:      models.RoleTeacher,
			CreatedAt: start.AddDate(0, 0, -60),
		})
	}
	for i := 0; i < mentorCount; i++ {
		userID++
		snap.Users = append(snap.Users, models.User{
			UserID:    userID,
			FullName:  fmt.Sprintf("Mentor %d", userID),
			Role:      models.RoleMentor,
			CreatedAt: start.AddDate(0, 0, -90),
		})
		snap.MentorProfiles = append(snap.MentorProfiles, models.MentorProfile{
			MentorID:          userID,
			PrimaryDomainCode: domains[g.rng.Intn(len(domains))],
			YearsExp:          3 + g.rng.Intn(12),
		})
	}

	for i := 0; i < g.opts.Courses; i++ {
		courseID := int64(i + 1)
		snap.Courses = append(snap.Courses, models.Course{
			CourseID:  courseID,
			FullName:  courseNames[i%len(courseNames)],
			Category:  categories[g.rng.Intn(len(categories))],
			StartDate: start.AddDate(0, 0, -14),
		})
		// One teacher runs each course, round-robin.
		snap.Enrollments = append(snap.Enrollments, models.Enrollment{
			CourseID:  courseID,
			UserID:    teachers[i%len(teachers)],
			EnrolTime: start.AddDate(0, 0, -14),
		})
	}

	g.enrollStudents(snap, students, start)
	g.buildCoursework(snap, start)
	g.buildEvents(snap, start)
	g.buildDailyKPIs(snap, start)
	g.buildRatings(snap)
	g.buildMentoring(snap, students, start)

	return snap
}

func (g *Generator) enrollStudents(snap *models.Snapshot, students []int64, start time.Time) {
	for _, studentID := range students {
		courseCount := 1 + g.rng.Intn(3)
		if courseCount > g.opts.Courses {
			courseCount = g.opts.Courses
		}
		for _, idx := range g.rng.Perm(g.opts.Courses)[:courseCount] {
			snap.Enrollments = append(snap.Enrollments, models.Enrollment{
				CourseID:  int64(idx + 1),
				UserID:    studentID,
				EnrolTime: start.Add(time.Duration(g.rng.Intn(72)) * time.Hour),
			})
		}
	}
}

// buildCoursework creates graded items and submissions for every enrollment.
// Roughly one in five submissions stays unsubmitted, which feeds the missing
// and due-soon lists; one in ten submitted ones stays ungraded.
func (g *Generator) buildCoursework(snap *models.Snapshot, start time.Time) {
	for _, enrol := range snap.Enrollments {
		if !g.isStudent(snap, enrol.UserID) {
			continue
		}
		for item := 1; item <= itemsPerCourse; item++ {
			itemID := enrol.CourseID*100 + int64(item)
			due := start.AddDate(0, 0, g.rng.Intn(g.opts.Days+7))

			sub := models.SubmissionRecord{
				CourseID:   enrol.CourseID,
				UserID:     enrol.UserID,
				ActivityID: itemID,
				DueDate:    due,
			}
			submitted := g.rng.Float64() < 0.8
			if submitted {
				at := due.Add(-time.Duration(1+g.rng.Intn(48)) * time.Hour)
				sub.SubmittedAt = &at
			}
			snap.Submissions = append(snap.Submissions, sub)

			if submitted && g.rng.Float64() < 0.9 {
				snap.Grades = append(snap.Grades, models.GradeRecord{
					CourseID: enrol.CourseID,
					UserID:   enrol.UserID,
					ItemID:   itemID,
					Score:    40 + g.rng.Float64()*60,
					MaxScore: 100,
					GradedAt: due.Add(24 * time.Hour),
				})
			}
		}
	}
}

func (g *Generator) buildEvents(snap *models.Snapshot, start time.Time) {
	for _, enrol := range snap.Enrollments {
		if !g.isStudent(snap, enrol.UserID) {
			continue
		}
		// A slice of learners goes quiet for the last stretch of the
		// window so the inactivity signals have something to find.
		activeDays := g.opts.Days
		if g.rng.Float64() < 0.15 {
			activeDays = g.opts.Days / 2
		}
		for day := 0; day < activeDays; day++ {
			if g.rng.Float64() < 0.4 {
				continue
			}
			base := start.AddDate(0, 0, day).Add(time.Duration(8+g.rng.Intn(12)) * time.Hour)
			burst := 1 + g.rng.Intn(4)
			for i := 0; i < burst; i++ {
				snap.Events = append(snap.Events, models.ActivityEvent{
					UserID:    enrol.UserID,
					CourseID:  enrol.CourseID,
					Timestamp: base.Add(time.Duration(i*(2+g.rng.Intn(10))) * time.Minute),
					EventType: eventTypes[g.rng.Intn(len(eventTypes))],
				})
			}
		}
	}
}

// buildDailyKPIs rolls events, submissions and grades up per course per day.
// The last KPI date anchors the engine's as-of date.
func (g *Generator) buildDailyKPIs(snap *models.Snapshot, start time.Time) {
	type key struct {
		courseID int64
		date     time.Time
	}
	active := make(map[key]map[int64]struct{})
	for _, ev := range snap.Events {
		k := key{ev.CourseID, dayOf(ev.Timestamp)}
		if active[k] == nil {
			active[k] = make(map[int64]struct{})
		}
		active[k][ev.UserID] = struct{}{}
	}

	subs := make(map[key]int)
	for _, sub := range snap.Submissions {
		if sub.SubmittedAt == nil {
			continue
		}
		subs[key{sub.CourseID, dayOf(*sub.SubmittedAt)}]++
	}

	gradeSum := make(map[key]float64)
	gradeN := make(map[key]int)
	for _, gr := range snap.Grades {
		k := key{gr.CourseID, dayOf(gr.GradedAt)}
		gradeSum[k] += gr.Score / gr.MaxScore * 100
		gradeN[k]++
	}

	for _, course := range snap.Courses {
		for day := 0; day < g.opts.Days; day++ {
			date := start.AddDate(0, 0, day)
			k := key{course.CourseID, date}
			avg := 0.0
			if gradeN[k] > 0 {
				avg = gradeSum[k] / float64(gradeN[k])
			}
			snap.DailyKPIs = append(snap.DailyKPIs, models.DailyCourseKPI{
				CourseID:    course.CourseID,
				Date:        date,
				ActiveUsers: len(active[k]),
				Submissions: subs[k],
				Completions: subs[k] / 2,
				AvgGrade:    avg,
			})
		}
	}
}

func (g *Generator) buildRatings(snap *models.Snapshot) {
	for _, course := range snap.Courses {
		snap.Ratings = append(snap.Ratings, models.CourseRating{
			CourseID:   course.CourseID,
			AvgRating:  3 + g.rng.Float64()*2,
			NumRatings: 5 + g.rng.Intn(40),
		})
	}
}

func (g *Generator) buildMentoring(snap *models.Snapshot, students []int64, start time.Time) {
	if len(snap.MentorProfiles) == 0 || len(students) == 0 {
		return
	}
	ideaCount := len(students)/4 + 1
	stages := []string{"ideation", "validation", "prototype", "pilot"}
	for i := 0; i < ideaCount; i++ {
		ideaID := int64(i + 1)
		snap.Ideas = append(snap.Ideas, models.Idea{
			IdeaID:     ideaID,
			StudentID:  students[g.rng.Intn(len(students))],
			DomainCode: domains[g.rng.Intn(len(domains))],
			Title:      fmt.Sprintf("Idea %d", ideaID),
			Stage:      stages[g.rng.Intn(len(stages))],
			CreatedAt:  start.AddDate(0, 0, g.rng.Intn(g.opts.Days)),
		})

		matchID := ideaID
		mentor := snap.MentorProfiles[g.rng.Intn(len(snap.MentorProfiles))]
		matchedAt := start.AddDate(0, 0, g.rng.Intn(g.opts.Days))
		snap.MentorMatches = append(snap.MentorMatches, models.MentorMatch{
			MatchID:   matchID,
			IdeaID:    ideaID,
			MentorID:  mentor.MentorID,
			MatchedAt: matchedAt,
			Status:    "active",
		})

		if g.rng.Float64() < 0.7 {
			snap.PitchScores = append(snap.PitchScores, models.PitchReadiness{
				MatchID: matchID,
				Score:   40 + g.rng.Intn(61),
				RatedAt: matchedAt.AddDate(0, 0, 3),
			})
		}
	}
}

func (g *Generator) isStudent(snap *models.Snapshot, userID int64) bool {
	u, ok := snap.UserByID(userID)
	return ok && u.Role == models.RoleStudent
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WriteCSV writes every table of the snapshot into dir, creating it when
// needed. File names match what the CSV snapshot loader expects.
func WriteCSV(snap *models.Snapshot, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	exporter := export.NewCSVExporter()
	write := func(name string, ds export.Dataset) error {
		payload, err := exporter.Render(ds)
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		return nil
	}

	users := export.Dataset{Headers: []string{"user_id", "fullname", "role", "created_at"}}
	for _, u := range snap.Users {
		users.Rows = append(users.Rows, map[string]string{
			"user_id":    formatID(u.UserID),
			"fullname":   u.FullName,
			"role":       string(u.Role),
			"created_at": u.CreatedAt.Format(time.RFC3339),
		})
	}
	if err := write("user_dim.csv", users); err != nil {
		return err
	}

	courses := export.Dataset{Headers: []string{"course_id", "fullname", "category", "startdate"}}
	for _, c := range snap.Courses {
		courses.Rows = append(courses.Rows, map[string]string{
			"course_id": formatID(c.CourseID),
			"fullname":  c.FullName,
			"category":  c.Category,
			"startdate": c.StartDate.Format(time.RFC3339),
		})
	}
	if err := write("course_dim.csv", courses); err != nil {
		return err
	}

	enrols := export.Dataset{Headers: []string{"course_id", "user_id", "enrol_time"}}
	for _, e := range snap.Enrollments {
		enrols.Rows = append(enrols.Rows, map[string]string{
			"course_id":  formatID(e.CourseID),
			"user_id":    formatID(e.UserID),
			"enrol_time": e.EnrolTime.Format(time.RFC3339),
		})
	}
	if err := write("enrol_fact.csv", enrols); err != nil {
		return err
	}

	grades := export.Dataset{Headers: []string{"course_id", "user_id", "item_id", "score", "maxscore", "graded_at"}}
	for _, gr := range snap.Grades {
		grades.Rows = append(grades.Rows, map[string]string{
			"course_id": formatID(gr.CourseID),
			"user_id":   formatID(gr.UserID),
			"item_id":   formatID(gr.ItemID),
			"score":     strconv.FormatFloat(gr.Score, 'f', 2, 64),
			"maxscore":  strconv.FormatFloat(gr.MaxScore, 'f', 2, 64),
			"graded_at": gr.GradedAt.Format(time.RFC3339),
		})
	}
	if err := write("grade_fact.csv", grades); err != nil {
		return err
	}

	subs := export.Dataset{Headers: []string{"course_id", "user_id", "activity_id", "submitted_at", "duedate"}}
	for _, s := range snap.Submissions {
		submittedAt := ""
		if s.SubmittedAt != nil {
			submittedAt = s.SubmittedAt.Format(time.RFC3339)
		}
		subs.Rows = append(subs.Rows, map[string]string{
			"course_id":    formatID(s.CourseID),
			"user_id":      formatID(s.UserID),
			"activity_id":  formatID(s.ActivityID),
			"submitted_at": submittedAt,
			"duedate":      s.DueDate.Format(time.RFC3339),
		})
	}
	if err := write("submission_fact.csv", subs); err != nil {
		return err
	}

	events := export.Dataset{Headers: []string{"user_id", "course_id", "timestamp", "event_type"}}
	for _, ev := range snap.Events {
		events.Rows = append(events.Rows, map[string]string{
			"user_id":    formatID(ev.UserID),
			"course_id":  formatID(ev.CourseID),
			"timestamp":  ev.Timestamp.Format(time.RFC3339),
			"event_type": ev.EventType,
		})
	}
	if err := write("event_log_staging.csv", events); err != nil {
		return err
	}

	kpis := export.Dataset{Headers: []string{"course_id", "date", "active_users", "submissions", "completions", "avg_grade"}}
	for _, k := range snap.DailyKPIs {
		kpis.Rows = append(kpis.Rows, map[string]string{
			"course_id":    formatID(k.CourseID),
			"date":         k.Date.Format("2006-01-02"),
			"active_users": strconv.Itoa(k.ActiveUsers),
			"submissions":  strconv.Itoa(k.Submissions),
			"completions":  strconv.Itoa(k.Completions),
			"avg_grade":    strconv.FormatFloat(k.AvgGrade, 'f', 2, 64),
		})
	}
	if err := write("daily_course_kpi.csv", kpis); err != nil {
		return err
	}

	ratings := export.Dataset{Headers: []string{"course_id", "avg_rating", "num_ratings"}}
	for _, r := range snap.Ratings {
		ratings.Rows = append(ratings.Rows, map[string]string{
			"course_id":   formatID(r.CourseID),
			"avg_rating":  strconv.FormatFloat(r.AvgRating, 'f', 2, 64),
			"num_ratings": strconv.Itoa(r.NumRatings),
		})
	}
	if err := write("course_rating.csv", ratings); err != nil {
		return err
	}

	ideas := export.Dataset{Headers: []string{"idea_id", "student_id", "domain_code", "title", "stage", "created_at"}}
	for _, idea := range snap.Ideas {
		ideas.Rows = append(ideas.Rows, map[string]string{
			"idea_id":     formatID(idea.IdeaID),
			"student_id":  formatID(idea.StudentID),
			"domain_code": idea.DomainCode,
			"title":       idea.Title,
			"stage":       idea.Stage,
			"created_at":  idea.CreatedAt.Format(time.RFC3339),
		})
	}
	if err := write("idea_dim.csv", ideas); err != nil {
		return err
	}

	mentors := export.Dataset{Headers: []string{"mentor_id", "primary_domain_code", "years_exp"}}
	for _, m := range snap.MentorProfiles {
		mentors.Rows = append(mentors.Rows, map[string]string{
			"mentor_id":           formatID(m.MentorID),
			"primary_domain_code": m.PrimaryDomainCode,
			"years_exp":           strconv.Itoa(m.YearsExp),
		})
	}
	if err := write("mentor_profile.csv", mentors); err != nil {
		return err
	}

	matches := export.Dataset{Headers: []string{"match_id", "idea_id", "mentor_id", "matched_at", "status"}}
	for _, m := range snap.MentorMatches {
		matches.Rows = append(matches.Rows, map[string]string{
			"match_id":   formatID(m.MatchID),
			"idea_id":    formatID(m.IdeaID),
			"mentor_id":  formatID(m.MentorID),
			"matched_at": m.MatchedAt.Format(time.RFC3339),
			"status":     m.Status,
		})
	}
	if err := write("mentor_match.csv", matches); err != nil {
		return err
	}

	pitches := export.Dataset{Headers: []string{"match_id", "score_0_100", "rated_at"}}
	for _, p := range snap.PitchScores {
		pitches.Rows = append(pitches.Rows, map[string]string{
			"match_id":    formatID(p.MatchID),
			"score_0_100": strconv.Itoa(p.Score),
			"rated_at":    p.RatedAt.Format(time.RFC3339),
		})
	}
	return write("pitch_readiness.csv", pitches)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
