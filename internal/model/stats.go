package model

import (
	"math"
	"time"

	"github.com/sandeepkv93/habitd/internal/clock"
)

type Summary struct {
	Total          int
	CompletedToday int
	Remaining      int
	SuccessRate    int
}

func Summarize(c Collection, dayKey string) Summary {
	s := Summary{Total: len(c)}
	for _, h := range c {
		if h.IsCompletedOn(dayKey) {
			s.CompletedToday++
		}
	}
	s.Remaining = s.Total - s.CompletedToday
	if s.Total > 0 {
		s.SuccessRate = int(math.Round(float64(s.CompletedToday) / float64(s.Total) * 100))
	}
	return s
}

type DayMark struct {
	DayKey string
	Done   bool
	Today  bool
}

// History returns the last days day-keys ending today, oldest first.
func (h Habit) History(now time.Time, loc *time.Location, days int) []DayMark {
	if days <= 0 {
		return []DayMark{}
	}
	today := clock.DayKey(now, loc)
	out := make([]DayMark, 0, days)
	for i := days - 1; i >= 0; i-- {
		key := clock.DayKey(now.AddDate(0, 0, -i), loc)
		out = append(out, DayMark{DayKey: key, Done: h.IsCompletedOn(key), Today: key == today})
	}
	return out
}

func (h Habit) MonthlyCount(now time.Time, loc *time.Location) int {
	prefix := clock.DayKey(now, loc)[:len("2006-01")]
	n := 0
	for _, key := range h.CompletedDates {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// Streak counts consecutive completed days ending today, or ending yesterday
// when today is not completed yet.
func (h Habit) Streak(now time.Time, loc *time.Location) int {
	cursor := now
	if !h.IsCompletedOn(clock.DayKey(cursor, loc)) {
		cursor = cursor.AddDate(0, 0, -1)
	}
	n := 0
	for h.IsCompletedOn(clock.DayKey(cursor, loc)) {
		n++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return n
}

func Greeting(hour int) string {
	switch {
	case hour < 4:
		return "LATE NIGHT HACKER 👾"
	case hour < 11:
		return "GOOD MORNING COMMANDER ☀️"
	case hour < 15:
		return "GOOD AFTERNOON AGENT 🌤️"
	case hour < 18:
		return "SUNSET CITY VIBES 🌆"
	default:
		return "NIGHT CITY AWAITS 🌙"
	}
}
