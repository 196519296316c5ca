package analytics

import (
	"sort"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

// StreakInfo describes consecutive-day check-in runs.
type StreakInfo struct {
	Current         int     `bson:"current" json:"current" yaml:"current"`
	Longest         int     `bson:"longest" json:"longest" yaml:"longest"`
	LastCheckinDate *string `bson:"last_checkin_date,omitempty" json:"last_checkin_date,omitempty" yaml:"last_checkin_date,omitempty"`
}

// CalculateStreaks finds the longest run of consecutive check-in days and the
// run ending at the most recent check-in. That run only counts as current when
// the most recent check-in is today or yesterday, where "today" is today's
// calendar date in its own location.
func CalculateStreaks(checkins []models.CheckIn, today time.Time) (StreakInfo, error) {
	if len(checkins) == 0 {
		return StreakInfo{}, nil
	}

	days := make([]time.Time, len(checkins))
	for i, c := range checkins {
		d, err := parseDate(c.Date)
		if err != nil {
			return StreakInfo{}, err
		}
		days[i] = d
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	last := formatDate(days[0])
	daysSinceLast := daysBetween(calendarDay(today), days[0])

	// mostRecent is the length of the run that contains days[0]; it is frozen
	// at the first break.
	longest, run, mostRecent := 0, 1, 0
	for i := 1; i < len(days); i++ {
		if daysBetween(days[i-1], days[i]) == 1 {
			run++
			continue
		}
		if mostRecent == 0 {
			mostRecent = run
		}
		longest = max(longest, run)
		run = 1
	}
	if mostRecent == 0 {
		mostRecent = run
	}
	longest = max(longest, run)

	current := 0
	if daysSinceLast <= 1 {
		current = mostRecent
	}

	return StreakInfo{
		Current:         current,
		Longest:         longest,
		LastCheckinDate: &last,
	}, nil
}
