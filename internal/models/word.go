package models

import "time"

// MasteredWord is a word the learner has spelled correctly at least once
type MasteredWord struct {
	ID                    int64     `db:"id" json:"id"`
	UserID                string    `db:"user_id" json:"user_id"`
	Word                  string    `db:"word" json:"word"`
	Definition            string    `db:"definition" json:"definition"`
	Origin                string    `db:"origin" json:"origin"`
	PhonicsPattern        string    `db:"phonics_pattern" json:"phonics_pattern"`
	TimesSpelledCorrectly int       `db:"times_spelled_correctly" json:"times_spelled_correctly"`
	UsedInDictation       bool      `db:"used_in_dictation" json:"used_in_dictation"`
	LastReviewed          time.Time `db:"last_reviewed" json:"last_reviewed"`
	MasteredAt            time.Time `db:"mastered_at" json:"mastered_at"`
}

// WordTier is the Golden Hive badge of a mastered word
type WordTier string

const (
	TierLearning WordTier = "Learning"
	TierExpert   WordTier = "Expert"
	TierMaster   WordTier = "Master"
)

// Tier derives the badge of the word; it is never stored
func (w MasteredWord) Tier() WordTier {
	switch {
	case w.TimesSpelledCorrectly >= 5 && w.UsedInDictation:
		return TierMaster
	case w.TimesSpelledCorrectly >= 3:
		return TierExpert
	default:
		return TierLearning
	}
}

// HiveWord is a mastered word tagged with its tier for display
type HiveWord struct {
	MasteredWord
	Badge WordTier `json:"tier"`
}

// WordAttempt is one logged spelling attempt
type WordAttempt struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Word        string    `db:"word" json:"word"`
	UserInput   string    `db:"user_input" json:"user_input"`
	Correct     bool      `db:"correct" json:"correct"`
	PhonicsHint string    `db:"phonics_hint" json:"phonics_hint,omitempty"`
	AttemptedAt time.Time `db:"attempted_at" json:"attempted_at"`
}
