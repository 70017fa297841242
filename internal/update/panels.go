package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/habitd/internal/clock"
	"github.com/sandeepkv93/habitd/internal/views"
)

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderHabitsView(now time.Time, loc *time.Location) string {
	today := clock.DayKey(now, loc)
	rows := make([]views.HabitRowData, 0, len(m.Habits))
	for _, h := range m.Habits {
		row := views.HabitRowData{
			ID:      h.ID,
			Title:   h.Title,
			Done:    h.IsCompletedOn(today),
			Monthly: h.MonthlyCount(now, loc),
		}
		if h.Reminder != nil {
			row.Reminder = h.Reminder.DisplayTime
		}
		for _, mark := range h.History(now, loc, m.HistoryDays) {
			row.Week = append(row.Week, views.DayDotData{Done: mark.Done, Today: mark.Today})
		}
		rows = append(rows, row)
	}
	return views.RenderHabitsPanel(views.HabitsPanelData{
		Rows:       rows,
		SelectedID: m.SelectedID,
	})
}

func (m Model) renderStatsView() string {
	return views.RenderStatsPanel(views.StatsPanelData{
		Total:        m.Summary.Total,
		Done:         m.Summary.CompletedToday,
		Pending:      m.Summary.Remaining,
		SuccessRate:  m.Summary.SuccessRate,
		ProgressView: m.rateProgress.ViewAs(float64(m.Summary.SuccessRate) / 100),
	})
}

// renderDetailMarkdown describes the selected habit for the glamour pane.
func (m Model) renderDetailMarkdown() string {
	h, ok := m.selected()
	if !ok {
		return views.RenderMarkdown("_No habit selected. Press **a** to add one._")
	}
	now := m.store.Now()
	loc := m.store.Location()

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", h.Title)
	if h.Reminder != nil {
		fmt.Fprintf(&b, "- Reminder: **%s** (%s)\n", h.Reminder.DisplayTime, h.Reminder.ISOTimestamp)
	} else {
		b.WriteString("- Reminder: _none_\n")
	}
	fmt.Fprintf(&b, "- Streak: %d day(s)\n", h.Streak(now, loc))
	fmt.Fprintf(&b, "- This month: %d\n", h.MonthlyCount(now, loc))
	if n := len(h.CompletedDates); n > 0 {
		fmt.Fprintf(&b, "- Last done: %s\n", h.CompletedDates[n-1])
	}
	return views.RenderMarkdown(b.String())
}
