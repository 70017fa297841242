package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sandeepkv93/habitd/internal/clock"
)

var (
	ErrInvalidDayKey   = errors.New("model: invalid day key")
	ErrDuplicateDayKey = errors.New("model: duplicate day key")
)

type Habit struct {
	ID             string
	Title          string
	CompletedDates []string
	Reminder       *Reminder
	CreatedAt      time.Time
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("model: habit id is required")
	}
	if strings.TrimSpace(h.Title) == "" {
		return errors.New("model: habit title is required")
	}
	seen := make(map[string]bool, len(h.CompletedDates))
	for _, key := range h.CompletedDates {
		if _, err := clock.ParseDayKey(key, nil); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDayKey, key)
		}
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicateDayKey, key)
		}
		seen[key] = true
	}
	if h.Reminder != nil {
		if err := h.Reminder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (h Habit) IsCompletedOn(dayKey string) bool {
	return slices.Contains(h.CompletedDates, dayKey)
}

// MarkCompleted appends dayKey unless it is already present.
func (h *Habit) MarkCompleted(dayKey string) bool {
	if h.IsCompletedOn(dayKey) {
		return false
	}
	h.CompletedDates = append(h.CompletedDates, dayKey)
	return true
}

func (h *Habit) Unmark(dayKey string) bool {
	idx := slices.Index(h.CompletedDates, dayKey)
	if idx < 0 {
		return false
	}
	h.CompletedDates = slices.Delete(h.CompletedDates, idx, idx+1)
	return true
}

func (h Habit) Clone() Habit {
	out := h
	out.CompletedDates = slices.Clone(h.CompletedDates)
	if out.CompletedDates == nil {
		out.CompletedDates = []string{}
	}
	if h.Reminder != nil {
		r := *h.Reminder
		out.Reminder = &r
	}
	return out
}

// Collection is the ordered habit list; order is insertion order.
type Collection []Habit

func (c Collection) Index(id string) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) Clone() Collection {
	out := make(Collection, 0, len(c))
	for _, h := range c {
		out = append(out, h.Clone())
	}
	return out
}

// Normalize drops unusable records and repairs duplicate ids and day keys.
// The first record with a given id wins.
func (c Collection) Normalize() Collection {
	out := make(Collection, 0, len(c))
	ids := make(map[string]bool, len(c))
	for _, h := range c {
		h.ID = strings.TrimSpace(h.ID)
		h.Title = strings.TrimSpace(h.Title)
		if h.ID == "" || h.Title == "" || ids[h.ID] {
			continue
		}
		ids[h.ID] = true

		dates := make([]string, 0, len(h.CompletedDates))
		seen := make(map[string]bool, len(h.CompletedDates))
		for _, key := range h.CompletedDates {
			if seen[key] {
				continue
			}
			if _, err := clock.ParseDayKey(key, nil); err != nil {
				continue
			}
			seen[key] = true
			dates = append(dates, key)
		}
		h.CompletedDates = dates
		if h.Reminder != nil && h.Reminder.Validate() != nil {
			h.Reminder = nil
		}
		out = append(out, h)
	}
	return out
}
