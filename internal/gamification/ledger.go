// Package gamification turns practice scores into avatar experience.
package gamification

import "spellinghive/internal/models"

// ExperiencePerLevel is the experience needed to climb one level
const ExperiencePerLevel = 1000

// Highest levels of each appearance tier
const (
	hatchlingMaxLevel  = 3
	apprenticeMaxLevel = 6
)

// Multipliers award experience per correct item; callers pass them in.
type Multipliers struct {
	Spelling int
	Reading  int
}

// DefaultMultipliers are the standard per-activity awards
var DefaultMultipliers = Multipliers{Spelling: 10, Reading: 20}

// NewAvatar returns the state every learner starts with
func NewAvatar(userID string) models.AvatarState {
	return models.AvatarState{
		UserID:      userID,
		Experience:  0,
		Level:       1,
		Appearance:  models.AppearanceHatchling,
		Accessories: []string{},
	}
}

// ExperienceFor is the experience earned for rawScore correct items
func ExperienceFor(rawScore, multiplier int) int {
	return rawScore * multiplier
}

// LevelFor derives the level from cumulative experience
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return experience/ExperiencePerLevel + 1
}

// AppearanceFor derives the appearance tier from a level
func AppearanceFor(level int) models.Appearance {
	switch {
	case level <= hatchlingMaxLevel:
		return models.AppearanceHatchling
	case level <= apprenticeMaxLevel:
		return models.AppearanceApprentice
	default:
		return models.AppearanceMaster
	}
}

// Derive recomputes level and appearance from the state's experience
func Derive(state models.AvatarState) models.AvatarState {
	state.Level = LevelFor(state.Experience)
	state.Appearance = AppearanceFor(state.Level)
	return state
}

// Apply folds an award into the state and returns the new state with the
// experience gained. Accessories are left untouched.
func Apply(state models.AvatarState, rawScore, multiplier int) (models.AvatarState, int) {
	gained := ExperienceFor(rawScore, multiplier)
	if gained < 0 {
		gained = 0
	}
	state.Experience += gained
	return Derive(state), gained
}

// NormalizeAccessories drops blanks and duplicates, keeping first-seen order
func NormalizeAccessories(accessories []string) []string {
	seen := make(map[string]struct{}, len(accessories))
	out := make([]string, 0, len(accessories))
	for _, a := range accessories {
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
