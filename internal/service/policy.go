package service

import (
	"spellinghive/internal/config"
	"spellinghive/internal/gamification"
	"spellinghive/internal/models"
)

// Policy holds the scoring rules applied to submissions
type Policy struct {
	Multipliers       gamification.Multipliers
	SpellingMinutes   int
	ReadingMinutes    int
	GatewayThreshold  float64
	PracticeThreshold float64
}

// DefaultPolicy returns the standard scoring rules
func DefaultPolicy() Policy {
	return Policy{
		Multipliers:       gamification.DefaultMultipliers,
		SpellingMinutes:   5,
		ReadingMinutes:    10,
		GatewayThreshold:  0.8,
		PracticeThreshold: 0.7,
	}
}

// PolicyFromConfig builds the policy from the progress config section
func PolicyFromConfig(cfg config.ProgressConfig) Policy {
	return Policy{
		Multipliers: gamification.Multipliers{
			Spelling: cfg.SpellingMultiplier,
			Reading:  cfg.ReadingMultiplier,
		},
		SpellingMinutes:   cfg.SpellingMinutes,
		ReadingMinutes:    cfg.ReadingMinutes,
		GatewayThreshold:  cfg.GatewayThreshold,
		PracticeThreshold: cfg.PracticeThreshold,
	}
}

// Threshold returns the pass ratio for a spelling mode
func (p Policy) Threshold(mode string) float64 {
	if mode == models.ModeGateway {
		return p.GatewayThreshold
	}
	return p.PracticeThreshold
}

// Passed reports whether score out of total clears the bar for mode
func (p Policy) Passed(mode string, score, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(score)/float64(total) >= p.Threshold(mode)
}
