// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
)

const (
	// DateLayout is the format expected in config files for calendar dates.
	DateLayout = constants.DateLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// MonthsElapsed counts calendar months from anchor to now, ignoring the day
// of month. Dates before the anchor count as zero months.
func MonthsElapsed(now, anchor time.Time) int {
	months := (now.Year()-anchor.Year())*constants.MonthsPerYear + int(now.Month()) - int(anchor.Month())
	if months < 0 {
		return 0
	}
	return months
}
