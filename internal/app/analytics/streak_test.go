package analytics

import (
	"testing"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var streakToday = time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

func checkinsOn(ds ...string) []models.CheckIn {
	out := make([]models.CheckIn, len(ds))
	for i, d := range ds {
		out[i] = ci(d)
	}
	return out
}

func TestCalculateStreaks_Empty(t *testing.T) {
	got, err := CalculateStreaks(nil, streakToday)
	require.NoError(t, err)
	assert.Equal(t, StreakInfo{}, got)
	assert.Nil(t, got.LastCheckinDate)
}

func TestCalculateStreaks(t *testing.T) {
	tests := []struct {
		name    string
		dates   []string
		current int
		longest int
		last    string
	}{
		{
			name:    "three days ending today",
			dates:   []string{"2024-06-08", "2024-06-09", "2024-06-10"},
			current: 3, longest: 3, last: "2024-06-10",
		},
		{
			name:    "ending yesterday still current",
			dates:   []string{"2024-06-07", "2024-06-08", "2024-06-09"},
			current: 3, longest: 3, last: "2024-06-09",
		},
		{
			name:    "ended two days ago",
			dates:   []string{"2024-06-06", "2024-06-07", "2024-06-08"},
			current: 0, longest: 3, last: "2024-06-08",
		},
		{
			name: "gap in the middle",
			dates: []string{
				"2024-05-30", "2024-05-31", "2024-06-01", "2024-06-02",
				"2024-06-05", "2024-06-06",
				"2024-06-09", "2024-06-10",
			},
			current: 2, longest: 4, last: "2024-06-10",
		},
		{
			name:    "unsorted input",
			dates:   []string{"2024-06-10", "2024-06-01", "2024-06-09", "2024-06-02"},
			current: 2, longest: 2, last: "2024-06-10",
		},
		{
			name:    "single check-in today",
			dates:   []string{"2024-06-10"},
			current: 1, longest: 1, last: "2024-06-10",
		},
		{
			name:    "across a month boundary",
			dates:   []string{"2024-05-30", "2024-05-31", "2024-06-01"},
			current: 0, longest: 3, last: "2024-06-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateStreaks(checkinsOn(tt.dates...), streakToday)
			require.NoError(t, err)
			assert.Equal(t, tt.current, got.Current)
			assert.Equal(t, tt.longest, got.Longest)
			require.NotNil(t, got.LastCheckinDate)
			assert.Equal(t, tt.last, *got.LastCheckinDate)
		})
	}
}

func TestCalculateStreaks_TodayInUserTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2024-06-10 20:00 UTC is already June 11 in Tokyo, so a streak ending
	// June 9 is no longer current there.
	now := time.Date(2024, 6, 10, 20, 0, 0, 0, time.UTC)
	history := checkinsOn("2024-06-08", "2024-06-09")

	utc, err := CalculateStreaks(history, now)
	require.NoError(t, err)
	assert.Equal(t, 2, utc.Current)

	local, err := CalculateStreaks(history, now.In(tokyo))
	require.NoError(t, err)
	assert.Equal(t, 0, local.Current)
	assert.Equal(t, 2, local.Longest)
}

func TestCalculateStreaks_RejectsBadDate(t *testing.T) {
	_, err := CalculateStreaks(checkinsOn("2024-06-10", "not-a-date"), streakToday)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCalculateStreaks_DoesNotMutateInput(t *testing.T) {
	in := checkinsOn("2024-06-10", "2024-06-08", "2024-06-09")
	before := append([]models.CheckIn(nil), in...)
	_, err := CalculateStreaks(in, streakToday)
	require.NoError(t, err)
	assert.Equal(t, before, in)
}
