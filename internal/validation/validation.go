package validation

import (
	"fmt"
	"regexp"
	"strings"

	"spellinghive/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Content bounds accepted by the generation endpoints
const (
	MinContentGrade = 1
	MaxContentGrade = 12
	MinLevel        = 1
	MaxContentLevel = 10
	MaxNameLength   = 50
	MaxWordLength   = 100
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets callers match any validation failure with errors.Is(err, models.ErrValidation)
func (e ValidationError) Unwrap() error {
	return models.ErrValidation
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateOptionalEmail accepts an empty address
func ValidateOptionalEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	return ValidateEmail(email)
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) > MaxNameLength {
		return ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}
	}
	return nil
}

// ValidateGrade checks a learner grade
func ValidateGrade(grade int) error {
	if grade < models.MinGrade || grade > models.MaxGrade {
		return ValidationError{Field: "grade", Message: fmt.Sprintf("grade must be between %d and %d", models.MinGrade, models.MaxGrade)}
	}
	return nil
}

// ValidateContentGrade checks the grade of a content request
func ValidateContentGrade(grade int) error {
	if grade < MinContentGrade || grade > MaxContentGrade {
		return ValidationError{Field: "grade", Message: fmt.Sprintf("grade must be between %d and %d", MinContentGrade, MaxContentGrade)}
	}
	return nil
}

// ValidateLevel checks a submission level
func ValidateLevel(level int) error {
	if level < MinLevel {
		return ValidationError{Field: "level", Message: "level must be at least 1"}
	}
	return nil
}

// ValidateContentLevel checks the level of a content request
func ValidateContentLevel(level int) error {
	if level < MinLevel || level > MaxContentLevel {
		return ValidationError{Field: "level", Message: fmt.Sprintf("level must be between %d and %d", MinLevel, MaxContentLevel)}
	}
	return nil
}

// ValidateDifficulty checks a spelling difficulty
func ValidateDifficulty(difficulty string) error {
	switch difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return nil
	default:
		return ValidationError{Field: "difficulty", Message: "difficulty must be easy, medium or hard"}
	}
}

// ValidateMode checks a spelling result mode
func ValidateMode(mode string) error {
	switch mode {
	case models.ModePractice, models.ModeGateway:
		return nil
	default:
		return ValidationError{Field: "mode", Message: "mode must be practice or gateway"}
	}
}

// ValidateScore checks 0 <= score <= total with a positive total
func ValidateScore(score, total int) error {
	if total <= 0 {
		return ValidationError{Field: "total", Message: "total must be greater than 0"}
	}
	if score < 0 || score > total {
		return ValidationError{Field: "score", Message: "score must be between 0 and total"}
	}
	return nil
}

// ValidateMinutes checks a manual practice entry
func ValidateMinutes(minutes int) error {
	if minutes <= 0 {
		return ValidationError{Field: "minutes", Message: "minutes must be greater than 0"}
	}
	return nil
}

// ValidateWord checks a word key
func ValidateWord(word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ValidationError{Field: "word", Message: "word is required"}
	}
	if len(word) > MaxWordLength {
		return ValidationError{Field: "word", Message: fmt.Sprintf("word must be at most %d characters", MaxWordLength)}
	}
	return nil
}

// First returns the first non-nil error
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
