package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/habitd/internal/banner"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/views"
)

const refreshInterval = time.Minute

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForBannerCmd(m.store.BannerChanges()), refreshTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}

		switch keyStr := typed.String(); keyStr {
		case "/":
			return m.openPalette(""), nil
		case m.Keys.Add:
			return m.openPalette("add "), nil
		case m.Keys.Remind:
			return m.openPalette("remind "), nil
		case m.Keys.Up, "up":
			m.moveCursor(-1)
			return m, nil
		case m.Keys.Down, "down":
			m.moveCursor(1)
			return m, nil
		case m.Keys.Toggle, "space", "enter":
			m.toggleSelected()
			return m, nil
		case m.Keys.Delete:
			m.deleteSelected()
			return m, nil
		case m.Keys.Ping:
			m.ping("")
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
	case BannerMsg:
		if typed.Closed {
			return m, nil
		}
		m.Banner = typed.State
		return m, waitForBannerCmd(m.store.BannerChanges())
	case RefreshMsg:
		m.refresh()
		return m, refreshTickCmd()
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	now := m.store.Now()
	loc := m.store.Location()
	leftPane := m.renderHabitsView(now, loc)
	rightPane := m.renderStatsView() + "\n\n" + m.detailViewport.View() + m.renderCommandPalette() + m.renderHelpIfVisible()

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("habitd | %s | %s", model.Greeting(now.In(loc).Hour()), now.In(loc).Format("Mon 02 Jan")),
		Banner:     views.BannerData{Visible: m.Banner.Visible, Title: m.Banner.Title, Message: m.Banner.Message},
		LeftPane:   leftPane,
		RightPane:  rightPane,
		StatusLine: status,
		Footer:     fmt.Sprintf("keys: %s/%s move | space done | %s delete | %s add | %s remind | / cmd | %s help | %s quit", m.Keys.Down, m.Keys.Up, m.Keys.Delete, m.Keys.Add, m.Keys.Remind, m.Keys.Help, m.Keys.Quit),
	})
}

func (m *Model) moveCursor(delta int) {
	if len(m.Habits) == 0 {
		return
	}
	next := m.Cursor + delta
	if next < 0 {
		next = 0
	}
	if next >= len(m.Habits) {
		next = len(m.Habits) - 1
	}
	m.Cursor = next
	m.SelectedID = m.Habits[next].ID
	m.detailViewport.SetContent(m.renderDetailMarkdown())
}

func (m *Model) toggleSelected() {
	h, ok := m.selected()
	if !ok {
		m.Status = StatusBar{Text: "no habit selected", IsError: true}
		return
	}
	completed, _ := m.store.ToggleCompletion(m.ctx, h.ID)
	if completed {
		m.Status = StatusBar{Text: fmt.Sprintf("done: %s", h.Title)}
	} else {
		m.Status = StatusBar{Text: fmt.Sprintf("undone: %s", h.Title)}
	}
	m.refresh()
}

func (m *Model) deleteSelected() {
	h, ok := m.selected()
	if !ok {
		m.Status = StatusBar{Text: "no habit selected", IsError: true}
		return
	}
	m.store.Delete(m.ctx, h.ID)
	m.Status = StatusBar{Text: fmt.Sprintf("deleted: %s", h.Title)}
	m.refresh()
}

func waitForBannerCmd(ch <-chan banner.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return BannerMsg{Closed: true}
		}
		return BannerMsg{State: st}
	}
}

func refreshTickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return RefreshMsg{} })
}
