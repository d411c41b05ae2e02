package models

import "time"

// Appearance is the cosmetic stage of the bee avatar
type Appearance string

const (
	AppearanceHatchling  Appearance = "hatchling"
	AppearanceApprentice Appearance = "apprentice"
	AppearanceMaster     Appearance = "master"
)

// AvatarState holds the gamified progress of a learner.
// Level and Appearance are always derived from Experience.
type AvatarState struct {
	UserID      string     `json:"user_id"`
	Experience  int        `json:"total_xp"`
	Level       int        `json:"current_level"`
	Appearance  Appearance `json:"appearance"`
	Accessories []string   `json:"accessories"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
