package habits

import (
	"errors"
	"strings"
)

var (
	ErrPastTimestamp    = errors.New("reminder time must be in the future")
	ErrEmptyTitle       = errors.New("habit title is required")
	ErrSchedulingFailed = errors.New("could not schedule notification")
)

// ValidationError reports input rejected before any mutation or gateway call.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidateTitle trims title and rejects it when nothing is left.
func ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	return title, nil
}
