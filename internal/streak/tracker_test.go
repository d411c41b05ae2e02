package streak

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spellinghive/internal/models"
)

// memoryLog is an in-memory Log keyed by date
type memoryLog struct {
	days map[string]models.DailyPractice
}

func newMemoryLog() *memoryLog {
	return &memoryLog{days: make(map[string]models.DailyPractice)}
}

func (m *memoryLog) AccumulatePractice(_ context.Context, userID, date string, minutes, activities int) error {
	d := m.days[date]
	d.UserID = userID
	d.Date = date
	d.MinutesPracticed += minutes
	d.ActivitiesCompleted += activities
	m.days[date] = d
	return nil
}

func (m *memoryLog) PracticeDaysOnOrBefore(_ context.Context, _ string, date string) ([]models.DailyPractice, error) {
	var out []models.DailyPractice
	for _, d := range m.days {
		if d.Date <= date {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *memoryLog) RecentPracticeDays(ctx context.Context, userID string, limit int) ([]models.DailyPractice, error) {
	all, _ := m.PracticeDaysOnOrBefore(ctx, userID, "9999-12-31")
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func day(t *testing.T, today string, offset int) string {
	t.Helper()
	d, err := time.Parse(DateLayout, today)
	require.NoError(t, err)
	return d.AddDate(0, 0, offset).Format(DateLayout)
}

func TestCurrentStreak(t *testing.T) {
	const today = "2026-03-02"
	ctx := context.Background()

	tests := []struct {
		name    string
		minutes map[int]int // day offset -> minutes
		want    int
	}{
		{
			name:    "three qualifying days then a gap",
			minutes: map[int]int{0: 20, -1: 15, -2: 30, -4: 60},
			want:    3,
		},
		{
			name:    "no entry today",
			minutes: map[int]int{-1: 30, -2: 30, -3: 30},
			want:    0,
		},
		{
			name:    "today below threshold",
			minutes: map[int]int{0: 14, -1: 30},
			want:    0,
		},
		{
			name:    "short day breaks the run",
			minutes: map[int]int{0: 15, -1: 10, -2: 40},
			want:    1,
		},
		{
			name:    "crosses a month boundary",
			minutes: map[int]int{0: 15, -1: 15, -2: 15, -3: 15},
			want:    4,
		},
		{
			name:    "future entries are ignored",
			minutes: map[int]int{1: 50, 0: 15},
			want:    1,
		},
		{
			name:    "empty log",
			minutes: map[int]int{},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := newMemoryLog()
			tracker := NewTracker(log, DefaultMinMinutes, time.UTC)
			for offset, minutes := range tt.minutes {
				require.NoError(t, tracker.RecordPractice(ctx, "u1", day(t, today, offset), minutes, 1))
			}

			got, err := tracker.CurrentStreak(ctx, "u1", today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionsAccumulateToThreshold(t *testing.T) {
	ctx := context.Background()
	log := newMemoryLog()
	tracker := NewTracker(log, DefaultMinMinutes, time.UTC)
	const today = "2026-05-10"

	require.NoError(t, tracker.RecordPractice(ctx, "u1", today, 8, 1))
	got, err := tracker.CurrentStreak(ctx, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	require.NoError(t, tracker.RecordPractice(ctx, "u1", today, 8, 1))
	got, err = tracker.CurrentStreak(ctx, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 2, log.days[today].ActivitiesCompleted)
}

func TestCustomThreshold(t *testing.T) {
	days := []models.DailyPractice{
		{Date: "2026-01-10", MinutesPracticed: 5},
		{Date: "2026-01-09", MinutesPracticed: 5},
	}
	assert.Equal(t, 2, Count(days, "2026-01-10", 5))
	assert.Equal(t, 0, Count(days, "2026-01-10", 6))
	assert.Equal(t, 0, Count(days, "not-a-date", 5))
}

func TestRecordPracticeRejectsBadDate(t *testing.T) {
	tracker := NewTracker(newMemoryLog(), 0, nil)
	err := tracker.RecordPractice(context.Background(), "u1", "03/02/2026", 10, 1)
	assert.Error(t, err)
}

func TestTodayUsesLocation(t *testing.T) {
	now := time.Date(2024, 2, 15, 20, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-02-15", Today(now, time.UTC))
	assert.Equal(t, "2024-02-16", Today(now, ParseTimezone("Asia/Tokyo")))
	assert.Equal(t, "2024-02-15", Today(now, ParseTimezone("Not/AZone")))

	tracker := NewTracker(newMemoryLog(), 0, ParseTimezone("Asia/Tokyo")).
		WithClock(func() time.Time { return now })
	assert.Equal(t, "2024-02-16", tracker.Today())
}
