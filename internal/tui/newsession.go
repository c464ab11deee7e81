package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/config"
	"github.com/pilotdeck/pilotdeck/internal/state"
)

// NewSessionModel is the session creation form: a goal, a repository picked
// from the paginated search, and the review/auto mode flag. The repository
// list accumulates pages through state.RepoPager, so "load more" merges
// overlap-free.
type NewSessionModel struct {
	client   *api.Client
	profiles *state.Profiles
	cfg      *config.Config
	pager    *state.RepoPager

	goal       textinput.Model
	search     textinput.Model
	cursor     int
	reviewMode bool
	creating   bool
	errMsg     string
	loadingRep bool

	width  int
	height int
}

type reposLoadedMsg struct{ err error }

// sessionCreatedMsg asks the app to jump to the new session's detail view.
type sessionCreatedMsg struct{ id string }

type createFailedMsg struct{ err error }

// NewNewSessionModel builds the creation form.
func NewNewSessionModel(client *api.Client, profiles *state.Profiles, cfg *config.Config) NewSessionModel {
	goal := textinput.New()
	goal.Placeholder = "What should the agent do?"
	goal.CharLimit = 4000
	search := textinput.New()
	search.Placeholder = "Search repositories..."
	return NewSessionModel{
		client:     client,
		profiles:   profiles,
		cfg:        cfg,
		pager:      state.NewRepoPager(client, 20),
		goal:       goal,
		search:     search,
		reviewMode: true,
	}
}

// Focus prepares the form and kicks off the first repository page.
func (m NewSessionModel) Focus() (NewSessionModel, tea.Cmd) {
	m.errMsg = ""
	m.creating = false
	m.goal.Focus()
	m.loadingRep = true
	return m, m.loadReposCmd()
}

func (m NewSessionModel) loadReposCmd() tea.Cmd {
	pager := m.pager
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return reposLoadedMsg{err: pager.LoadMore(ctx)}
	}
}

func (m NewSessionModel) createCmd(req api.SessionRequest) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		created, err := client.CreateSession(ctx, req)
		if err != nil {
			return createFailedMsg{err: err}
		}
		return sessionCreatedMsg{id: created.SessionID}
	}
}

func (m NewSessionModel) Update(msg tea.Msg) (NewSessionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reposLoadedMsg:
		m.loadingRep = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		repos := m.pager.Repos()
		if m.cursor >= len(repos) {
			m.cursor = max(0, len(repos)-1)
		}
		return m, nil

	case createFailedMsg:
		m.creating = false
		m.errMsg = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		if m.goal.Focused() {
			switch msg.String() {
			case "esc":
				m.goal.Blur()
				return m, nil
			case "enter", "tab":
				m.goal.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.goal, cmd = m.goal.Update(msg)
			return m, cmd
		}
		if m.search.Focused() {
			switch msg.String() {
			case "esc":
				m.search.Blur()
				return m, nil
			case "enter":
				m.search.Blur()
				m.pager.SetQuery(strings.TrimSpace(m.search.Value()))
				m.cursor = 0
				m.loadingRep = true
				return m, m.loadReposCmd()
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return closeDetailMsg{} }
		case "g":
			m.goal.Focus()
			return m, textinput.Blink
		case "/":
			m.search.Focus()
			return m, textinput.Blink
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.pager.Repos())-1 {
				m.cursor++
			}
		case "m":
			if m.pager.HasMore() && !m.loadingRep {
				m.loadingRep = true
				return m, m.loadReposCmd()
			}
		case "v":
			m.reviewMode = !m.reviewMode
		case "enter":
			return m.submit()
		}
	}
	return m, nil
}

func (m NewSessionModel) submit() (NewSessionModel, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	goal := strings.TrimSpace(m.goal.Value())
	if goal == "" {
		m.errMsg = "a goal is required"
		return m, nil
	}
	repos := m.pager.Repos()
	if m.cursor >= len(repos) {
		m.errMsg = "select a repository"
		return m, nil
	}
	repo := repos[m.cursor]

	mode := "auto"
	if m.reviewMode {
		mode = "review"
	}
	req := api.SessionRequest{
		Goal:             goal,
		RepositoryID:     repo.ID,
		BaseBranch:       repo.DefaultBranch,
		Mode:             mode,
		AIProfileID:      m.profiles.Selected(),
		GitCoAuthorName:  m.cfg.Git.CoAuthorName,
		GitCoAuthorEmail: m.cfg.Git.CoAuthorEmail,
	}
	m.creating = true
	m.errMsg = ""
	return m, m.createCmd(req)
}

func (m *NewSessionModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.goal.Width = max(20, w-12)
	m.search.Width = max(20, w-12)
}

func (m NewSessionModel) View() string {
	goalLabel := dimStyle.Render("Goal ") + keycapStyle.Render("g")
	repoHeader := dimStyle.Render("Repository ") + keycapStyle.Render("/")

	repos := m.pager.Repos()
	lineLimit := max(3, m.height-16)
	rows := ""
	for i, r := range repos {
		if i >= lineLimit {
			break
		}
		lang := r.Language
		if lang == "" {
			lang = "Plain Text"
		}
		label := fmt.Sprintf("%-44s %s", truncate(r.FullName, 42),
			dimStyle.Render(fmt.Sprintf("%s · %d stars", lang, r.Stars)))
		if i == m.cursor {
			label = selectedRowStyle.Render(label)
		}
		rows += label + "\n"
	}
	switch {
	case m.loadingRep && len(repos) == 0:
		rows = dimStyle.Render("Loading repositories...\n")
	case len(repos) == 0:
		rows = dimStyle.Render("No repositories found\n")
	case m.pager.HasMore():
		rows += dimStyle.Render(fmt.Sprintf("[m] load more (%d of %d)\n", len(repos), m.pager.Total()))
	}

	mode := "auto"
	if m.reviewMode {
		mode = "review"
	}
	profileName := "none"
	if p := m.profiles.SelectedProfile(); p != nil {
		profileName = p.Name
	}
	settings := dimStyle.Render("mode ") + inkStyle.Render(mode) +
		dimStyle.Render("  [v] toggle   profile ") + inkStyle.Render(profileName)

	footer := lipgloss.JoinHorizontal(lipgloss.Left,
		keycapStyle.Render("enter"), " ", inkStyle.Render("start session"), "  ",
		keycapStyle.Render("esc"), " ", dimStyle.Render("back"),
	)
	if m.creating {
		footer = dimStyle.Render("Creating session...")
	}
	if m.errMsg != "" {
		footer = errStyle.Render(truncate(m.errMsg, max(10, m.width-4)))
	}

	return panelStyle.Width(max(20, m.width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			panelHeaderStyle.Render("New Session"),
			"",
			goalLabel,
			m.goal.View(),
			"",
			repoHeader,
			m.search.View(),
			rows,
			settings,
			"",
			footer,
		),
	)
}
