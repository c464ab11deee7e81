// Package tui is the terminal front end: a session list, a live session
// detail thread, and a new-session form, each backed by interval polling
// against the backend. Views own no authoritative state — every refresh
// replaces what they show.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/config"
	"github.com/pilotdeck/pilotdeck/internal/state"
)

// view identifies the active screen.
type view int

const (
	viewSessions view = iota
	viewDetail
	viewNew
)

// App is the root bubbletea model. It owns the state stores and routes
// messages to the active view; inactive polling views are blurred so their
// timers die with them.
type App struct {
	cfg      *config.Config
	client   *api.Client
	auth     *state.Auth
	profiles *state.Profiles
	header   *state.Header

	active   view
	sessions SessionsModel
	detail   DetailModel
	form     NewSessionModel

	width  int
	height int
}

type storesLoadedMsg struct{}

// NewApp wires the stores and views together.
func NewApp(cfg *config.Config, client *api.Client) *App {
	auth := state.NewAuth(client)
	profiles := state.NewProfiles(client)
	header := state.NewHeader()
	header.Set("Sessions", "agent tasks across your repositories")
	return &App{
		cfg:      cfg,
		client:   client,
		auth:     auth,
		profiles: profiles,
		header:   header,
		sessions: NewSessionsModel(client, time.Duration(cfg.Poll.List)*time.Second, cfg.Output.PerPage),
		detail:   NewDetailModel(client, time.Duration(cfg.Poll.Session)*time.Second),
		form:     NewNewSessionModel(client, profiles, cfg),
	}
}

// Run starts the bubbletea program.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.sessions.Init(),
		a.loadStoresCmd(),
	)
}

func (a *App) loadStoresCmd() tea.Cmd {
	auth, profiles := a.auth, a.profiles
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		auth.Load(ctx)
		profiles.Load(ctx)
		return storesLoadedMsg{}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentW := max(20, msg.Width-2)
		contentH := max(8, msg.Height-5)
		a.sessions.SetSize(contentW, contentH)
		a.detail.SetSize(contentW, contentH)
		a.form.SetSize(contentW, contentH)
		return a, nil

	case storesLoadedMsg:
		return a, nil

	case openSessionMsg:
		a.active = viewDetail
		a.sessions = a.sessions.Blur()
		a.header.Set("Session "+msg.id, "live agent thread")
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Open(msg.id)
		return a, cmd

	case sessionCreatedMsg:
		a.active = viewDetail
		a.header.Set("Session "+msg.id, "live agent thread")
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Open(msg.id)
		return a, cmd

	case closeDetailMsg:
		a.detail = a.detail.Close()
		a.active = viewSessions
		a.header.Set("Sessions", "agent tasks across your repositories")
		var cmd tea.Cmd
		a.sessions, cmd = a.sessions.Focus()
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.active == viewSessions {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "n":
				a.active = viewNew
				a.sessions = a.sessions.Blur()
				a.header.Set("New Session", "pick a goal and a repository")
				var cmd tea.Cmd
				a.form, cmd = a.form.Focus()
				return a, cmd
			}
		}
	}

	return a.route(msg)
}

// route delegates to the active view only; blurred views receive nothing, so
// their stale tick messages fall through to the generation guard.
func (a *App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.active {
	case viewSessions:
		a.sessions, cmd = a.sessions.Update(msg)
	case viewDetail:
		a.detail, cmd = a.detail.Update(msg)
	case viewNew:
		a.form, cmd = a.form.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	title, desc := a.header.Get()
	who := ""
	switch {
	case a.auth.Loading():
		who = dimStyle.Render("checking session...")
	case a.auth.User() == nil:
		who = errStyle.Render("not signed in — run: pilotdeck login")
	default:
		who = dimStyle.Render(a.auth.User().Email)
	}
	head := lipgloss.NewStyle().
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(line).
		Width(a.width).
		Padding(0, 1).
		Render(lipgloss.JoinHorizontal(lipgloss.Left,
			titleStyle.Render("pilotdeck"),
			"  ",
			panelHeaderStyle.Render(title),
			"  ",
			dimStyle.Render(desc),
			"  ",
			who,
		))

	var content string
	switch a.active {
	case viewSessions:
		content = a.sessions.View()
	case viewDetail:
		content = a.detail.View()
	case viewNew:
		content = a.form.View()
	}

	body := lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		MaxHeight(max(1, a.height-3)).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}
