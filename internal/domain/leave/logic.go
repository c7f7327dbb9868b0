package leave

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("end date before start date")

// CalculateDays returns the inclusive day count between start and end,
// computed once at submission and frozen on the request.
func CalculateDays(start, end time.Time) (int, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
