// Package clock supplies the current time and the calendar keys derived from it.
package clock

import (
	"sync"
	"time"
)

// DayKeyLayout is the fixed layout of a day-key (ISO calendar date).
const DayKeyLayout = "2006-01-02"

// DisplayLayout is the 24h hour:minute layout used for reminder badges.
const DisplayLayout = "15:04"

type Clock interface {
	Now() time.Time
}

type System struct{}

func (System) Now() time.Time { return time.Now() }

// Manual is a settable clock for tests.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(now time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// DayKey returns the calendar date of t in loc as YYYY-MM-DD. A nil loc means UTC.
func DayKey(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(DayKeyLayout)
}

func DisplayTime(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(DisplayLayout)
}

func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DayKeyLayout, key, loc)
}

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}
