// Package analytics derives statistics from a user's check-in history:
// pairwise metric correlations, check-in streaks, moving-average trends and
// menstrual-cycle predictions.
//
// Every function here is pure. It reads the supplied check-ins, never mutates
// them, performs no I/O and keeps no state between calls, so callers may run
// them concurrently. "Not enough data" is never an error: it is reported as an
// empty slice, a zero streak or a nil prediction. Errors are reserved for
// invalid input (malformed dates, a window below 1, an unknown range or metric).
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratawell/internal/domain/models"
)

var (
	// ErrInvalidDate is returned when a check-in or point carries a date that
	// is not a YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidWindow is returned when a moving-average window is below 1.
	ErrInvalidWindow = errors.New("moving average window must be at least 1")

	// ErrInvalidRange is returned for an unknown date range name.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUnknownMetric is returned for an unknown metric name.
	ErrUnknownMetric = errors.New("unknown metric")
)

// IsInputError reports whether err was caused by invalid caller input rather
// than an internal failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrUnknownMetric)
}

// parseDate parses a YYYY-MM-DD string as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// formatDate renders a midnight-UTC date back to YYYY-MM-DD.
func formatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// calendarDay returns t's calendar date, read in t's own location, as
// midnight UTC so it can be compared with parsed check-in dates.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole number of days from b to a. Both must be
// midnight UTC values.
func daysBetween(a, b time.Time) int {
	return int(a.Sub(b).Hours() / 24)
}

// validateDates rejects the whole batch if any check-in date is malformed.
func validateDates(checkins []models.CheckIn) error {
	for _, c := range checkins {
		if _, err := parseDate(c.Date); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidateDate(s string) error {
	_, err := parseDate(s)
	return err
}
