package models

import "time"

// Spelling difficulties accepted from the client
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Spelling result modes; the gateway test gates the next level
const (
	ModePractice = "practice"
	ModeGateway  = "gateway"
)

// SpellingProgress is one completed spelling exercise
type SpellingProgress struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Grade       int       `db:"grade" json:"grade"`
	Level       int       `db:"level" json:"level"`
	Difficulty  string    `db:"difficulty" json:"difficulty"`
	Mode        string    `db:"mode" json:"mode"`
	Score       int       `db:"score" json:"score"`
	TotalWords  int       `db:"total_words" json:"total_words"`
	Passed      bool      `db:"passed" json:"passed"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// ReadingProgress is one completed story quiz
type ReadingProgress struct {
	ID             int64     `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	Grade          int       `db:"grade" json:"grade"`
	Level          int       `db:"level" json:"level"`
	StoryID        string    `db:"story_id" json:"story_id"`
	StoryNumber    int       `db:"story_number" json:"story_number"`
	Score          int       `db:"score" json:"score"`
	TotalQuestions int       `db:"total_questions" json:"total_questions"`
	Passed         bool      `db:"passed" json:"passed"`
	CompletedAt    time.Time `db:"completed_at" json:"completed_at"`
}

// DailyPractice accumulates practice for one calendar day (YYYY-MM-DD)
type DailyPractice struct {
	UserID              string `db:"user_id" json:"user_id"`
	Date                string `db:"practice_date" json:"date"`
	MinutesPracticed    int    `db:"minutes_practiced" json:"minutes_practiced"`
	ActivitiesCompleted int    `db:"activities_completed" json:"activities_completed"`
}

// ProgressSnapshot is everything the progress screen shows for one grade
type ProgressSnapshot struct {
	Spelling      []SpellingProgress `json:"spelling"`
	Reading       []ReadingProgress  `json:"reading"`
	HighestLevel  int                `json:"highest_level"`
	Avatar        *AvatarState       `json:"avatar"`
	CurrentStreak int                `json:"current_streak"`
}
