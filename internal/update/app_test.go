package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/habitd/internal/banner"
	"github.com/sandeepkv93/habitd/internal/clock"
	"github.com/sandeepkv93/habitd/internal/habits"
	"github.com/sandeepkv93/habitd/internal/notify"
	"github.com/sandeepkv93/habitd/internal/storage"
)

func newTestModel(t *testing.T) (Model, *habits.Store) {
	t.Helper()
	gateway := notify.NewLocalGateway(notify.LocalOptions{
		Deliverer: notify.DelivererFunc(func(context.Context, notify.Delivery) error { return nil }),
	})
	store := habits.New(storage.NewMemoryGateway(), gateway, habits.Options{
		Clock:    clock.NewManual(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
		Location: time.UTC,
		Banner:   banner.New(time.Hour),
	})
	t.Cleanup(func() {
		_ = store.Close(context.Background())
		_ = gateway.Close()
	})
	store.Load(context.Background())
	return NewModel(context.Background(), store), store
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runCommand(t *testing.T, m Model, command string) Model {
	t.Helper()
	return press(t, m, runes("/"), runes(command), tea.KeyMsg{Type: tea.KeyEnter})
}

func TestNewModelDefaults(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Keys.Quit != "q" || m.Keys.Help != "?" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if len(m.Habits) != 0 || m.SelectedID != "" {
		t.Fatalf("expected empty model, got %+v", m.Habits)
	}
	if m.HistoryDays != 7 {
		t.Fatalf("expected 7 history days, got %d", m.HistoryDays)
	}
}

func TestPaletteAddsHabit(t *testing.T) {
	m, store := newTestModel(t)
	m = runCommand(t, m, "add run 5k")

	if got := store.Habits(); len(got) != 1 || got[0].Title != "run 5k" {
		t.Fatalf("expected one habit, got %+v", got)
	}
	if m.SelectedID != store.Habits()[0].ID {
		t.Fatalf("expected new habit selected, got %q", m.SelectedID)
	}
	if m.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
	if m.Status.Text != "added habit: run 5k" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestAddKeyPrefillsPalette(t *testing.T) {
	m, store := newTestModel(t)
	m = press(t, m, runes("a"))
	if !m.Palette.Active || m.Palette.Input != "add " {
		t.Fatalf("expected prefilled palette, got %+v", m.Palette)
	}
	m = press(t, m, runes("read"), tea.KeyMsg{Type: tea.KeyEnter})
	if len(store.Habits()) != 1 {
		t.Fatalf("expected habit added, got %d", len(store.Habits()))
	}
}

func TestPaletteEscapeCloses(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("/"), runes("add x"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Palette.Active || m.Palette.Input != "" {
		t.Fatalf("expected closed palette, got %+v", m.Palette)
	}
}

func TestCursorNavigation(t *testing.T) {
	m, store := newTestModel(t)
	for _, title := range []string{"a", "b", "c"} {
		store.Add(context.Background(), title)
	}
	m = press(t, m, RefreshMsg{})
	if m.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", m.Cursor)
	}

	m = press(t, m, runes("j"), runes("j"), runes("j"))
	if m.Cursor != 2 || m.SelectedID != m.Habits[2].ID {
		t.Fatalf("expected clamp to last row, got cursor=%d", m.Cursor)
	}
	m = press(t, m, runes("k"))
	if m.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", m.Cursor)
	}
}

func TestSpaceTogglesCompletionAndShowsBanner(t *testing.T) {
	m, store := newTestModel(t)
	h, _ := store.Add(context.Background(), "stretch")
	m = press(t, m, RefreshMsg{}, tea.KeyMsg{Type: tea.KeySpace})

	got, _ := store.Habit(h.ID)
	if len(got.CompletedDates) != 1 || got.CompletedDates[0] != "2024-06-01" {
		t.Fatalf("expected completion for today, got %+v", got.CompletedDates)
	}
	if !m.Banner.Visible || m.Banner.Title != "MISSION COMPLETE! 🎉" {
		t.Fatalf("expected celebration banner, got %+v", m.Banner)
	}
	if m.Summary.SuccessRate != 100 {
		t.Fatalf("expected summary refresh, got %+v", m.Summary)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	got, _ = store.Habit(h.ID)
	if len(got.CompletedDates) != 0 || m.Status.Text != "undone: stretch" {
		t.Fatalf("expected undone, got %+v status=%+v", got.CompletedDates, m.Status)
	}
}

func TestDeleteKeyRemovesSelected(t *testing.T) {
	m, store := newTestModel(t)
	store.Add(context.Background(), "a")
	store.Add(context.Background(), "b")
	m = press(t, m, RefreshMsg{}, runes("j"), runes("x"))

	left := store.Habits()
	if len(left) != 1 || left[0].Title != "a" {
		t.Fatalf("expected only a left, got %+v", left)
	}
	if m.Cursor != 0 || m.SelectedID != left[0].ID {
		t.Fatalf("expected cursor clamped to remaining habit, got %d %q", m.Cursor, m.SelectedID)
	}
}

func TestRemindCommandSetsReminder(t *testing.T) {
	m, store := newTestModel(t)
	h, _ := store.Add(context.Background(), "meditate")
	m = press(t, m, RefreshMsg{})
	m = runCommand(t, m, "remind 2024-06-02 07:00")

	got, _ := store.Habit(h.ID)
	if got.Reminder == nil || got.Reminder.DisplayTime != "07:00" {
		t.Fatalf("expected reminder at 07:00, got %+v", got.Reminder)
	}
	if m.Banner.Title != "ALARM SET ✅" {
		t.Fatalf("expected alarm banner, got %+v", m.Banner)
	}
	if out := m.View(); !strings.Contains(out, "⏰07:00") {
		t.Fatalf("expected reminder badge in view: %q", out)
	}
}

func TestRemindCommandRejectsPast(t *testing.T) {
	m, store := newTestModel(t)
	h, _ := store.Add(context.Background(), "meditate")
	m = press(t, m, RefreshMsg{})
	m = runCommand(t, m, "remind 2024-06-01T09:00:00Z")

	if !m.Status.IsError || m.Status.Text != "reminder time is in the past" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	if !errors.Is(m.LastError, habits.ErrPastTimestamp) {
		t.Fatalf("expected past timestamp error, got %v", m.LastError)
	}
	got, _ := store.Habit(h.ID)
	if got.Reminder != nil {
		t.Fatalf("expected no reminder, got %+v", got.Reminder)
	}
}

func TestCommandsNeedSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m = runCommand(t, m, "done")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no habit selected") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestUnknownCommandReportsError(t *testing.T) {
	m, _ := newTestModel(t)
	m = runCommand(t, m, "fly away")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestRenameCommand(t *testing.T) {
	m, store := newTestModel(t)
	h, _ := store.Add(context.Background(), "old")
	m = press(t, m, RefreshMsg{})
	m = runCommand(t, m, "rename new title")

	got, _ := store.Habit(h.ID)
	if got.Title != "new title" {
		t.Fatalf("expected rename, got %q", got.Title)
	}
}

func TestPingKeySendsTestNotification(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("p"))
	if m.Banner.Title != "SYSTEM CHECK 🔔" || m.Status.Text != "test notification sent" {
		t.Fatalf("unexpected ping result: banner=%+v status=%+v", m.Banner, m.Status)
	}
}

func TestBannerMsgUpdatesAndRearms(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(BannerMsg{State: banner.State{Visible: true, Title: "hi", Message: "there"}})
	next := updated.(Model)
	if next.Banner.Title != "hi" || !next.Banner.Visible {
		t.Fatalf("unexpected banner: %+v", next.Banner)
	}
	if cmd == nil {
		t.Fatal("expected banner wait command")
	}

	_, cmd = next.Update(BannerMsg{Closed: true})
	if cmd != nil {
		t.Fatal("expected no command once the feed is closed")
	}
}

func TestInitReturnsCommands(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("expected init command")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t)
	next := press(t, m, SetStatusMsg{Text: "ready"})
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	next = press(t, next, AppErrorMsg{Err: errors.New("boom")})
	if next.LastError == nil || !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	next = press(t, next, ClearStatusMsg{})
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, runes("?"))
	if !m.HelpVisible || !strings.Contains(m.View(), "remind <HH:MM") {
		t.Fatal("expected help panel in view")
	}
	m = press(t, m, runes("?"))
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(runes("q"))
	if !updated.(Model).Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestViewContainsCoreState(t *testing.T) {
	m, store := newTestModel(t)
	store.Add(context.Background(), "hydrate")
	m = press(t, m, RefreshMsg{}, SetStatusMsg{Text: "all good"})

	out := m.View()
	for _, want := range []string{"GOOD MORNING COMMANDER", "> [ ] hydrate", "pending: 1 | done: 0/1", "status: all good"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view: %q", want, out)
		}
	}
}
