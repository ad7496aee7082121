package core

import "fmt"

// weekdayNames follows the Monday-first calendar convention of the datasets:
// index 0 is Monday and index 6 is Sunday.
var weekdayNames = [7]string{
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
	"Sunday",
}

// DayName maps a weekday index to its name. Indices outside [0,6] fail with
// ErrInvalidRecord instead of wrapping around.
func DayName(weekday int) (string, error) {
	if weekday < 0 || weekday >= len(weekdayNames) {
		return "", fmt.Errorf("%w: weekday index %d outside [0,6]", ErrInvalidRecord, weekday)
	}
	return weekdayNames[weekday], nil
}

// WeekdayNames returns the fixed lookup table in index order.
func WeekdayNames() []string {
	out := make([]string, len(weekdayNames))
	copy(out, weekdayNames[:])
	return out
}
