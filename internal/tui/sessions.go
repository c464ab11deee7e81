package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// SessionsModel is the session list view. It polls the list endpoint on a
// fixed interval and replaces its rows wholesale on every load — the fetched
// page is the new truth. Poll failures keep the last-known rows and are only
// logged.
type SessionsModel struct {
	client   *api.Client
	interval time.Duration
	perPage  int

	sessions []api.Session
	cursor   int
	loading  bool
	lastLoad time.Time
	width    int
	height   int

	// seq identifies the active polling generation. Blur bumps it so ticks
	// and loads scheduled by an earlier generation are dropped, which is how
	// leaving the view cancels its timer. Manual refresh bumps it too: the
	// reload starts a fresh chain and the old chain's pending tick dies with
	// its generation, keeping exactly one chain per view.
	seq int
}

type sessionsLoadedMsg struct {
	seq      int
	sessions []api.Session
	err      error
}

type sessionsTickMsg struct{ seq int }

// openSessionMsg asks the app to switch to the detail view.
type openSessionMsg struct{ id string }

// NewSessionsModel creates the list view polling every interval.
func NewSessionsModel(client *api.Client, interval time.Duration, perPage int) SessionsModel {
	return SessionsModel{client: client, interval: interval, perPage: perPage, loading: true}
}

func (m SessionsModel) Init() tea.Cmd {
	return m.loadCmd(m.seq)
}

func (m SessionsModel) loadCmd(seq int) tea.Cmd {
	client, perPage := m.client, m.perPage
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		list, err := client.ListSessions(ctx, 1, perPage, "")
		if err != nil {
			return sessionsLoadedMsg{seq: seq, err: err}
		}
		return sessionsLoadedMsg{seq: seq, sessions: list.Data}
	}
}

// Blur stops the polling loop by invalidating in-flight generations.
func (m SessionsModel) Blur() SessionsModel {
	m.seq++
	return m
}

// Focus restarts polling with a fresh generation.
func (m SessionsModel) Focus() (SessionsModel, tea.Cmd) {
	m.seq++
	return m, m.loadCmd(m.seq)
}

func (m SessionsModel) Update(msg tea.Msg) (SessionsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if msg.err != nil {
			// Keep displaying the last-known rows; the next tick retries.
			slog.Debug("session list poll failed", "error", msg.err)
		} else {
			m.sessions = msg.sessions
			m.lastLoad = time.Now()
			if m.cursor >= len(m.sessions) {
				m.cursor = max(0, len(m.sessions)-1)
			}
		}
		m.loading = false
		seq := m.seq
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
			return sessionsTickMsg{seq: seq}
		})

	case sessionsTickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.loadCmd(m.seq)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			}
		case "r":
			m.loading = true
			m.seq++
			return m, m.loadCmd(m.seq)
		case "enter":
			if m.cursor < len(m.sessions) {
				id := m.sessions[m.cursor].Key()
				return m, func() tea.Msg { return openSessionMsg{id: id} }
			}
		}
	}
	return m, nil
}

func (m *SessionsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m SessionsModel) View() string {
	if m.loading && len(m.sessions) == 0 {
		return panelStyle.Width(max(20, m.width-2)).Render("Loading sessions...")
	}

	lineLimit := max(5, m.height-8)
	rows := ""
	for i, s := range m.sessions {
		if i >= lineLimit {
			break
		}
		title := s.Title
		if title == "" {
			title = "Session " + s.Key()
		}
		pulse := " "
		if api.StatusActive(s.Status) {
			pulse = lipgloss.NewStyle().Foreground(green).Render("●")
		}
		row := lipgloss.JoinHorizontal(lipgloss.Left,
			pulse, " ",
			lipgloss.NewStyle().Width(40).Foreground(ink).Render(truncate(title, 38)),
			lipgloss.NewStyle().Width(20).Render(statusBadge(s.Status)),
			dimStyle.Render(truncate(s.UpdatedAt, 19)),
		)
		if i == m.cursor {
			row = selectedRowStyle.Render(row)
		}
		rows += row + "\n"
	}
	if len(m.sessions) == 0 {
		rows = dimStyle.Render("No sessions yet. Press [n] to start one.\n")
	}

	updated := "never"
	if !m.lastLoad.IsZero() {
		updated = m.lastLoad.Format("15:04:05")
	}
	footer := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("enter"), " ", dimStyle.Render("open"), "  ",
		keycapStyle.Render("n"), " ", dimStyle.Render("new"), "  ",
		keycapStyle.Render("r"), " ", dimStyle.Render("refresh"), "  ",
		dimStyle.Render(fmt.Sprintf("updated %s", updated)),
	)

	return panelStyle.Width(max(20, m.width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render("Sessions"),
			"",
			rows,
			footer,
		),
	)
}
