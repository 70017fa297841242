package commands

import (
	"fmt"
	"strings"
	"time"
)

// ParseWhen resolves a reminder time relative to now. A bare HH:MM that has
// already passed today means the same time tomorrow.
func ParseWhen(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "time is empty"}
	}

	if strings.HasPrefix(raw, "+") {
		d, err := time.ParseDuration(strings.TrimPrefix(raw, "+"))
		if err != nil || d <= 0 {
			return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("invalid duration %q", raw)}
		}
		return now.Add(d), nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("15:04", raw, loc); err == nil {
		local := now.In(loc)
		at := time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}
		return at, nil
	}
	return time.Time{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unrecognised time %q", raw)}
}
