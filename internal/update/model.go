package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/habitd/internal/banner"
	"github.com/sandeepkv93/habitd/internal/model"
)

// HabitStore is the part of the habit store the TUI drives.
type HabitStore interface {
	Habits() model.Collection
	Summary() model.Summary
	Banner() banner.State
	BannerChanges() <-chan banner.State
	Now() time.Time
	Location() *time.Location

	Add(ctx context.Context, title string) (model.Habit, bool)
	Delete(ctx context.Context, id string) bool
	Rename(ctx context.Context, id, title string) bool
	ToggleCompletion(ctx context.Context, id string) (completed bool, ok bool)
	SetReminder(ctx context.Context, id string, at time.Time) error
	TriggerNow(ctx context.Context, title, body string) error
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Up     string
	Down   string
	Toggle string
	Delete string
	Add    string
	Remind string
	Ping   string
	Help   string
	Quit   string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	store      HabitStore
	ctx        context.Context
	Habits     model.Collection
	Summary    model.Summary
	Cursor     int
	SelectedID string
	Banner     banner.State
	Palette    CommandPaletteState
	Status     StatusBar
	Keys       GlobalKeyMap
	// HistoryDays is the width of the completion strip on each row.
	HistoryDays int
	HelpVisible bool
	Quitting    bool
	LastError   error

	commandInput   textinput.Model
	rateProgress   progress.Model
	helpModel      help.Model
	detailViewport viewport.Model
}

type BannerMsg struct {
	State banner.State
	// Closed is set once the banner feed has ended.
	Closed bool
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// RefreshMsg reloads the snapshot; the minute tick sends it so the day
// rolls over without input.
type RefreshMsg struct{}

func NewModel(ctx context.Context, store HabitStore) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	m := Model{
		store:       store,
		ctx:         ctx,
		HistoryDays: 7,
		Keys: GlobalKeyMap{
			Up:     "k",
			Down:   "j",
			Toggle: " ",
			Delete: "x",
			Add:    "a",
			Remind: "r",
			Ping:   "p",
			Help:   "?",
			Quit:   "q",
		},
	}
	m.initBubbleComponents()
	m.refresh()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.rateProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	m.helpModel = help.New()
	m.detailViewport = viewport.New(54, 12)
}

// refresh copies the store snapshot into the model and clamps the cursor.
func (m *Model) refresh() {
	m.Habits = m.store.Habits()
	m.Summary = m.store.Summary()
	m.Banner = m.store.Banner()

	if idx := m.Habits.Index(m.SelectedID); idx >= 0 {
		m.Cursor = idx
	}
	if m.Cursor >= len(m.Habits) {
		m.Cursor = len(m.Habits) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.SelectedID = ""
	if len(m.Habits) > 0 {
		m.SelectedID = m.Habits[m.Cursor].ID
	}
	m.detailViewport.SetContent(m.renderDetailMarkdown())
}

func (m Model) selected() (model.Habit, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Habits) {
		return model.Habit{}, false
	}
	return m.Habits[m.Cursor], true
}
