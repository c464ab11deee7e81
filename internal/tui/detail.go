package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// DetailModel is the live session view: a short-interval polling loop over
// one session, a log thread, and the two user inputs (approve, message) the
// server interprets as transition triggers. Every successful fetch replaces
// the session wholesale; the client never mutates authoritative fields.
type DetailModel struct {
	client   *api.Client
	interval time.Duration

	sessionID string
	session   *api.Session
	loading   bool
	actionErr string
	submitted bool
	showPlan  bool

	logs  viewport.Model
	input textinput.Model

	width  int
	height int

	// seq invalidates ticks from a previous generation, see SessionsModel.
	seq int
}

type detailLoadedMsg struct {
	seq     int
	session *api.Session
	err     error
}

type detailTickMsg struct{ seq int }

// actionDoneMsg reports an approve/input call. A successful action triggers
// an immediate refetch rather than waiting for the next tick.
type actionDoneMsg struct {
	seq int
	err error
}

// closeDetailMsg asks the app to return to the session list.
type closeDetailMsg struct{}

// NewDetailModel creates the detail view for one session.
func NewDetailModel(client *api.Client, interval time.Duration) DetailModel {
	input := textinput.New()
	input.Placeholder = "Message the agent..."
	input.CharLimit = 2000
	logs := viewport.New(80, 20)
	return DetailModel{client: client, interval: interval, logs: logs, input: input}
}

// Open points the view at a session and starts its polling generation.
func (m DetailModel) Open(sessionID string) (DetailModel, tea.Cmd) {
	m.sessionID = sessionID
	m.session = nil
	m.loading = true
	m.actionErr = ""
	m.showPlan = false
	m.logs.SetContent("")
	m.input.SetValue("")
	m.input.Blur()
	m.seq++
	return m, m.loadCmd(m.seq)
}

// Close stops polling; pending ticks for the old generation are dropped.
func (m DetailModel) Close() DetailModel {
	m.seq++
	return m
}

func (m DetailModel) loadCmd(seq int) tea.Cmd {
	client, id := m.client, m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := client.GetSession(ctx, id)
		return detailLoadedMsg{seq: seq, session: s, err: err}
	}
}

func (m DetailModel) approveCmd(seq int) tea.Cmd {
	client, id := m.client, m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return actionDoneMsg{seq: seq, err: client.ApproveSession(ctx, id)}
	}
}

func (m DetailModel) sendInputCmd(seq int, message string) tea.Cmd {
	client, id := m.client, m.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return actionDoneMsg{seq: seq, err: client.AddSessionInput(ctx, id, message)}
	}
}

func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		if msg.err != nil {
			// Transient poll failure: keep the last-known session visible.
			slog.Debug("session poll failed", "session", m.sessionID, "error", msg.err)
		} else {
			atBottom := m.logs.AtBottom()
			m.session = msg.session
			m.logs.SetContent(strings.Join(msg.session.Logs, "\n"))
			if atBottom {
				m.logs.GotoBottom()
			}
		}
		m.loading = false
		seq := m.seq
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
			return detailTickMsg{seq: seq}
		})

	case detailTickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m, m.loadCmd(m.seq)

	case actionDoneMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.submitted = false
		if msg.err != nil {
			m.actionErr = msg.err.Error()
			return m, nil
		}
		m.actionErr = ""
		// Out-of-band refetch on a fresh generation so the user sees the
		// effect promptly without a second polling chain: the superseded
		// chain's pending tick no longer matches and is dropped.
		m.seq++
		return m, m.loadCmd(m.seq)

	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "esc":
				m.input.Blur()
				return m, nil
			case "enter":
				text := strings.TrimSpace(m.input.Value())
				if text == "" || m.submitted {
					return m, nil
				}
				m.input.SetValue("")
				m.input.Blur()
				m.submitted = true
				return m, m.sendInputCmd(m.seq, text)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return closeDetailMsg{} }
		case "a":
			if m.session != nil && m.session.Status == api.StatusWaitingForUser && !m.submitted {
				m.submitted = true
				return m, m.approveCmd(m.seq)
			}
		case "i":
			m.input.Focus()
			return m, textinput.Blink
		case "p":
			m.showPlan = !m.showPlan
		case "r":
			m.seq++
			return m, m.loadCmd(m.seq)
		default:
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *DetailModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.logs.Width = max(20, w-6)
	m.logs.Height = max(5, h-10)
	m.input.Width = max(20, w-10)
}

func (m DetailModel) View() string {
	if m.loading && m.session == nil {
		return panelStyle.Width(max(20, m.width-2)).Render("Loading session...")
	}
	if m.session == nil {
		return panelStyle.Width(max(20, m.width-2)).Render(
			errStyle.Render("Session not found") + "\n" + dimStyle.Render("Press [esc] to go back."),
		)
	}

	s := m.session
	title := s.Title
	if title == "" {
		title = "Session " + s.Key()
	}
	head := lipgloss.JoinHorizontal(lipgloss.Left,
		panelHeaderStyle.Render(truncate(title, max(10, m.width-30))),
		"  ",
		statusBadge(s.Status),
	)

	repo := "unknown"
	if s.Repository != nil {
		repo = s.Repository.FullName
	} else if v := s.StateString("repo_url"); v != "" {
		repo = v
	}
	branch := s.StateString("base_branch")
	if branch == "" {
		branch = "HEAD"
	}
	ctxLine := dimStyle.Render("repo ") + inkStyle.Render(truncate(repo, 48)) +
		dimStyle.Render("  branch ") + inkStyle.Render(branch)

	goal := s.StateString("goal")
	if goal == "" {
		goal = s.Title
	}
	goalLine := dimStyle.Render("goal ") + inkStyle.Render(truncate(goal, max(10, m.width-12)))

	body := m.logs.View()
	if len(s.Logs) == 0 {
		body = dimStyle.Render("Waiting for the agent to report progress...")
	}
	if m.showPlan {
		body = m.renderPlan()
	}

	var controls []string
	if s.Status == api.StatusWaitingForUser {
		controls = append(controls, keycapStyle.Render("a"), " ", inkStyle.Render("approve & resume"), "  ")
	}
	controls = append(controls,
		keycapStyle.Render("i"), " ", dimStyle.Render("message"), "  ",
		keycapStyle.Render("p"), " ", dimStyle.Render("plan"), "  ",
		keycapStyle.Render("esc"), " ", dimStyle.Render("back"),
	)
	footer := lipgloss.JoinHorizontal(lipgloss.Left, controls...)
	if m.submitted {
		footer = dimStyle.Render("Sending...")
	}
	if m.actionErr != "" {
		footer = errStyle.Render(truncate(m.actionErr, max(10, m.width-4)))
	}

	parts := []string{head, goalLine, ctxLine, "", body, ""}
	if m.input.Focused() {
		parts = append(parts, m.input.View())
	}
	parts = append(parts, footer)

	return panelStyle.Width(max(20, m.width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)
}

// renderPlan shows the agent's current plan from the open state bag, rendered
// as markdown.
func (m DetailModel) renderPlan() string {
	plan := m.session.StateString("plan")
	if plan == "" {
		return dimStyle.Render("Agent is planning...")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(20, m.logs.Width)),
	)
	if err != nil {
		return plan
	}
	out, err := r.Render(plan)
	if err != nil {
		return plan
	}
	return strings.TrimRight(out, "\n")
}
