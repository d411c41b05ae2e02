package models

import "errors"

// Sentinel errors shared by repositories, services and handlers.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrGenerationFailed = errors.New("content generation failed")
)
