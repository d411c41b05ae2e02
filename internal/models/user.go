package models

import "time"

// UserProfile represents a learner using the app
type UserProfile struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Grade         int       `db:"grade" json:"grade"`
	GuardianEmail string    `db:"guardian_email" json:"guardian_email,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	LastActive    time.Time `db:"last_active" json:"last_active"`
}

// Grade bounds for learner profiles
const (
	MinGrade = 1
	MaxGrade = 6
)
