package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/habitd/internal/commands"
	"github.com/sandeepkv93/habitd/internal/habits"
)

const (
	pingTitle = "SYSTEM CHECK 🔔"
	pingBody  = "Notifications are working"
)

func (m Model) openPalette(prefill string) Model {
	m.Palette.Active = true
	m.Palette.Input = prefill
	m.commandInput.SetValue(prefill)
	m.commandInput.CursorEnd()
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m = m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			h, ok := m.store.Add(m.ctx, a.Title)
			if !ok {
				return commands.Result{}, habits.ErrEmptyTitle
			}
			m.SelectedID = h.ID
			return commands.Result{Message: fmt.Sprintf("added habit: %s", h.Title)}, nil
		},
		Rename: func(r commands.RenameArgs) (commands.Result, error) {
			h, err := m.requireSelected()
			if err != nil {
				return commands.Result{}, err
			}
			if !m.store.Rename(m.ctx, h.ID, r.Title) {
				return commands.Result{}, habits.ErrEmptyTitle
			}
			return commands.Result{Message: fmt.Sprintf("renamed to: %s", strings.TrimSpace(r.Title))}, nil
		},
		Delete: func() (commands.Result, error) {
			h, err := m.requireSelected()
			if err != nil {
				return commands.Result{}, err
			}
			m.store.Delete(m.ctx, h.ID)
			return commands.Result{Message: fmt.Sprintf("deleted: %s", h.Title)}, nil
		},
		Done: func() (commands.Result, error) {
			h, err := m.requireSelected()
			if err != nil {
				return commands.Result{}, err
			}
			completed, _ := m.store.ToggleCompletion(m.ctx, h.ID)
			if completed {
				return commands.Result{Message: fmt.Sprintf("done: %s", h.Title)}, nil
			}
			return commands.Result{Message: fmt.Sprintf("undone: %s", h.Title)}, nil
		},
		Remind: func(r commands.RemindArgs) (commands.Result, error) {
			h, err := m.requireSelected()
			if err != nil {
				return commands.Result{}, err
			}
			at, err := commands.ParseWhen(r.When, m.store.Now(), m.store.Location())
			if err != nil {
				return commands.Result{}, err
			}
			if err := m.store.SetReminder(m.ctx, h.ID, at); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("reminder for %s at %s", h.Title, at.In(m.store.Location()).Format("2006-01-02 15:04"))}, nil
		},
		Ping: func(p commands.PingArgs) (commands.Result, error) {
			if err := m.ping(p.Message); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: "test notification sent"}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: describeError(err), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message}
	}
	m.refresh()
	return m
}

func (m Model) requireSelected() (habitRef, error) {
	h, ok := m.selected()
	if !ok {
		return habitRef{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "no habit selected"}
	}
	return habitRef{ID: h.ID, Title: h.Title}, nil
}

type habitRef struct {
	ID    string
	Title string
}

func (m *Model) ping(body string) error {
	if strings.TrimSpace(body) == "" {
		body = pingBody
	}
	err := m.store.TriggerNow(m.ctx, pingTitle, body)
	if err != nil {
		m.Status = StatusBar{Text: describeError(err), IsError: true}
	} else {
		m.Status = StatusBar{Text: "test notification sent"}
	}
	m.Banner = m.store.Banner()
	return err
}

func describeError(err error) string {
	switch {
	case errors.Is(err, habits.ErrPastTimestamp):
		return "reminder time is in the past"
	case errors.Is(err, habits.ErrSchedulingFailed):
		return "could not schedule the notification"
	default:
		return err.Error()
	}
}
