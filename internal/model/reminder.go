package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidReminderTimestamp = errors.New("model: invalid reminder timestamp")

// Reminder is the record of the single scheduled notification of a habit.
type Reminder struct {
	DisplayTime  string
	ISOTimestamp string
	ScheduledID  string
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ScheduledID) == "" {
		return errors.New("model: reminder scheduled_id is required")
	}
	if _, err := r.At(); err != nil {
		return err
	}
	return nil
}

func (r Reminder) At() (time.Time, error) {
	at, err := time.Parse(time.RFC3339, r.ISOTimestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidReminderTimestamp, r.ISOTimestamp)
	}
	return at, nil
}
