// Package streak keeps the daily practice log and measures practice streaks.
package streak

import (
	"context"
	"fmt"
	"time"

	"spellinghive/internal/models"
)

// DateLayout is the storage format of practice dates
const DateLayout = "2006-01-02"

// DefaultMinMinutes is the practice needed for a day to count
const DefaultMinMinutes = 15

// Log is the date-indexed practice store. Accumulation must happen in a
// single statement on the store side.
type Log interface {
	AccumulatePractice(ctx context.Context, userID, date string, minutes, activities int) error
	PracticeDaysOnOrBefore(ctx context.Context, userID, date string) ([]models.DailyPractice, error)
	RecentPracticeDays(ctx context.Context, userID string, limit int) ([]models.DailyPractice, error)
}

// Tracker records practice and computes the current streak
type Tracker struct {
	log        Log
	minMinutes int
	loc        *time.Location
	now        func() time.Time
}

// NewTracker creates a tracker. Calendar days are taken in loc.
func NewTracker(log Log, minMinutes int, loc *time.Location) *Tracker {
	if minMinutes <= 0 {
		minMinutes = DefaultMinMinutes
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{log: log, minMinutes: minMinutes, loc: loc, now: time.Now}
}

// WithClock replaces the clock used by Today
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Today returns the current calendar date in the tracker's time zone
func (t *Tracker) Today() string {
	return Today(t.now(), t.loc)
}

// RecordPractice adds minutes and activities to the given day
func (t *Tracker) RecordPractice(ctx context.Context, userID, date string, minutes, activities int) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("invalid practice date %q: %w", date, err)
	}
	return t.log.AccumulatePractice(ctx, userID, date, minutes, activities)
}

// CurrentStreak returns the number of consecutive qualifying days ending at today
func (t *Tracker) CurrentStreak(ctx context.Context, userID, today string) (int, error) {
	days, err := t.log.PracticeDaysOnOrBefore(ctx, userID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to load practice days: %w", err)
	}
	return Count(days, today, t.minMinutes), nil
}

// RecentDays returns up to limit practice days, newest first
func (t *Tracker) RecentDays(ctx context.Context, userID string, limit int) ([]models.DailyPractice, error) {
	return t.log.RecentPracticeDays(ctx, userID, limit)
}

// Count walks days (newest first) backward from today. The walk stops at the
// first missing day or the first day under minMinutes; today must qualify.
func Count(days []models.DailyPractice, today string, minMinutes int) int {
	expected, err := time.Parse(DateLayout, today)
	if err != nil {
		return 0
	}

	streak := 0
	for _, d := range days {
		if d.Date > today {
			continue
		}
		if d.Date != expected.Format(DateLayout) || d.MinutesPracticed < minMinutes {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// Today formats the calendar date of now in loc
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// ParseTimezone loads a location by name, falling back to UTC
func ParseTimezone(tz string) *time.Location {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
