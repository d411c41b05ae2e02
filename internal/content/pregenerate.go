package content

import (
	"context"
	"errors"
)

// LevelResult is the outcome of pre-generating one level
type LevelResult struct {
	Level int    `json:"level"`
	Error string `json:"error,omitempty"`
}

// Report summarizes a pre-generation sweep
type Report struct {
	Grade     int           `json:"grade"`
	Completed []int         `json:"completed"`
	Failed    []LevelResult `json:"failed"`
}

// Pregenerate warms levels 1..maxLevel of a grade, spelling words then story
// pack per level, one level at a time. A failing level is logged and recorded
// and the sweep moves on. Only context cancellation stops it early.
func (c *Cache) Pregenerate(ctx context.Context, grade, maxLevel int) Report {
	report := Report{Grade: grade, Completed: []int{}, Failed: []LevelResult{}}
	c.log.Info("Pre-generating content", "grade", grade, "max_level", maxLevel)

	for level := 1; level <= maxLevel; level++ {
		if err := ctx.Err(); err != nil {
			report.Failed = append(report.Failed, LevelResult{Level: level, Error: err.Error()})
			break
		}

		err := c.warmLevel(ctx, grade, level)
		if err != nil {
			c.log.Error("Failed to generate content", "grade", grade, "level", level, "error", err)
			report.Failed = append(report.Failed, LevelResult{Level: level, Error: err.Error()})
			continue
		}
		c.log.Info("Completed level", "grade", grade, "level", level)
		report.Completed = append(report.Completed, level)
	}

	c.log.Info("Pre-generation complete", "grade", grade, "completed", len(report.Completed), "failed", len(report.Failed))
	return report
}

func (c *Cache) warmLevel(ctx context.Context, grade, level int) error {
	if _, err := c.SpellingWords(ctx, grade, level); err != nil {
		return err
	}
	_, err := c.StoryPack(ctx, grade, level)
	return err
}

// OK reports whether every level succeeded
func (r Report) OK() bool {
	return len(r.Failed) == 0
}

// Err joins the per-level failures, or nil
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, errors.New(f.Error))
	}
	return errors.Join(errs...)
}
