package models

import "time"

// Idea is a student venture idea tracked by the mentoring programme.
type Idea struct {
	IdeaID     int64     `db:"idea_id" json:"idea_id"`
	StudentID  int64     `db:"student_id" json:"student_id"`
	DomainCode string    `db:"domain_code" json:"domain_code"`
	Title      string    `db:"title" json:"title"`
	Stage      string    `db:"stage" json:"stage"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// MentorProfile is the mentor dimension row; its presence defines a valid
// mentor ID for the mentor dashboard.
type MentorProfile struct {
	MentorID          int64  `db:"mentor_id" json:"mentor_id"`
	PrimaryDomainCode string `db:"primary_domain_code" json:"primary_domain_code"`
	YearsExp          int    `db:"years_exp" json:"years_exp"`
}

// MentorMatch pairs a mentor with an idea.
type MentorMatch struct {
	MatchID   int64     `db:"match_id" json:"match_id"`
	IdeaID    int64     `db:"idea_id" json:"idea_id"`
	MentorID  int64     `db:"mentor_id" json:"mentor_id"`
	MatchedAt time.Time `db:"matched_at" json:"matched_at"`
	Status    string    `db:"status" json:"status"`
}

// PitchReadiness scores a match's pitch on a 0-100 scale.
type PitchReadiness struct {
	MatchID int64     `db:"match_id" json:"match_id"`
	Score   int       `db:"score_0_100" json:"score_0_100"`
	RatedAt time.Time `db:"rated_at" json:"rated_at"`
}
