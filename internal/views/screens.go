package views

import (
	"fmt"
	"strings"
)

type BannerData struct {
	Visible bool
	Title   string
	Message string
}

type DayDotData struct {
	Done  bool
	Today bool
}

type HabitRowData struct {
	ID       string
	Title    string
	Done     bool
	Reminder string
	Week     []DayDotData
	Monthly  int
}

type HabitsPanelData struct {
	Rows       []HabitRowData
	SelectedID string
}

type StatsPanelData struct {
	Total        int
	Done         int
	Pending      int
	SuccessRate  int
	ProgressView string
}

type HelpPanelData struct {
	Bindings []string
	Commands []string
	HelpView string
}

func RenderBanner(data BannerData) string {
	if !data.Visible {
		return ""
	}
	return bannerStyle.Render(fmt.Sprintf("%s\n%s", data.Title, data.Message))
}

func RenderHabitsPanel(data HabitsPanelData) string {
	var b strings.Builder
	b.WriteString("missions:\n")
	if len(data.Rows) == 0 {
		b.WriteString("(no habits yet, press [a] to add one)")
		return b.String()
	}
	for _, row := range data.Rows {
		cursor := " "
		if row.ID == data.SelectedID {
			cursor = ">"
		}
		check := "[ ]"
		if row.Done {
			check = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, check, row.Title))
		if row.Reminder != "" {
			b.WriteString(fmt.Sprintf(" ⏰%s", row.Reminder))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("      %s  month:%d\n", renderWeek(row.Week), row.Monthly))
	}
	return strings.TrimSpace(b.String())
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("today:\n")
	b.WriteString(fmt.Sprintf("pending: %d | done: %d/%d\n", data.Pending, data.Done, data.Total))
	b.WriteString(fmt.Sprintf("success: %s %d%%", data.ProgressView, data.SuccessRate))
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("\n\ncommand: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nkeys:\n%s\ncommands:\n- %s\n%s",
		strings.Join(data.Bindings, "\n"),
		strings.Join(data.Commands, "\n- "),
		data.HelpView,
	)
}

func renderWeek(days []DayDotData) string {
	var b strings.Builder
	for _, d := range days {
		switch {
		case d.Done:
			b.WriteString("●")
		case d.Today:
			b.WriteString("◌")
		default:
			b.WriteString("·")
		}
	}
	return b.String()
}
