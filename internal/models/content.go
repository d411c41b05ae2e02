package models

import "time"

// ContentKind names a family of generated content packs
type ContentKind string

const (
	KindSpellingWords ContentKind = "spelling_words"
	KindStoryPack     ContentKind = "story_pack"
)

// ContentEntry is one cached content pack
type ContentEntry struct {
	Kind      ContentKind `db:"content_type"`
	Grade     int         `db:"grade"`
	Level     int         `db:"level"`
	Content   string      `db:"content_json"`
	CreatedAt time.Time   `db:"created_at"`
}

// SpellingWord is one generated spelling word
type SpellingWord struct {
	Word            string `json:"word"`
	Definition      string `json:"definition"`
	Origin          string `json:"origin"`
	PhonicsPattern  string `json:"phonics_pattern"`
	Difficulty      int    `json:"difficulty"`
	ExampleSentence string `json:"example_sentence"`
}

// Story is one generated reading passage with its quiz
type Story struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Text            string     `json:"text"`
	WordCount       int        `json:"word_count"`
	DifficultyLevel string     `json:"difficulty_level"`
	Themes          []string   `json:"themes"`
	Questions       []Question `json:"questions"`
}

// Question is a multiple choice comprehension question
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}
