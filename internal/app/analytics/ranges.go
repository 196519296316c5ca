package analytics

import (
	"fmt"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

// DateRange names a look-back window ending today.
type DateRange string

const (
	Range7Days   DateRange = "7d"
	Range30Days  DateRange = "30d"
	Range90Days  DateRange = "90d"
	Range1Year   DateRange = "1y"
	RangeAll     DateRange = "all"
	DefaultRange           = Range30Days
)

var rangeDays = map[DateRange]int{
	Range7Days:  7,
	Range30Days: 30,
	Range90Days: 90,
	Range1Year:  365,
	RangeAll:    0,
}

// ParseDateRange validates a range name. An empty string selects DefaultRange.
func ParseDateRange(s string) (DateRange, error) {
	if s == "" {
		return DefaultRange, nil
	}
	r := DateRange(s)
	if _, ok := rangeDays[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	return r, nil
}

// Since returns the first date (YYYY-MM-DD) inside the range, counted back
// from today's calendar date. It returns false for RangeAll, which has no
// lower bound.
func (r DateRange) Since(today time.Time) (string, bool) {
	days := rangeDays[r]
	if days == 0 {
		return "", false
	}
	return formatDate(calendarDay(today).AddDate(0, 0, -days)), true
}

// FilterRange keeps the check-ins dated on or after the range's lower bound.
func FilterRange(checkins []models.CheckIn, r DateRange, today time.Time) ([]models.CheckIn, error) {
	if err := validateDates(checkins); err != nil {
		return nil, err
	}
	since, bounded := r.Since(today)
	if !bounded {
		return checkins, nil
	}
	out := make([]models.CheckIn, 0, len(checkins))
	for _, c := range checkins {
		if c.Date >= since {
			out = append(out, c)
		}
	}
	return out, nil
}
