// Package tui is the terminal front end of the issue tracker: a root model
// that routes between views through the session guard, plus the views
// themselves.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/client/api"
	"github.com/atinyakov/IssueKeeper/internal/client/router"
	"github.com/atinyakov/IssueKeeper/internal/client/session"
	"github.com/atinyakov/IssueKeeper/internal/models"
)

// API is the subset of the REST client the views call.
type API interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	ListIssues(ctx context.Context) ([]models.Issue, error)
	IssueCounts(ctx context.Context) (*models.IssueCounts, error)
	GetIssue(ctx context.Context, title string) (*models.Issue, error)
	CreateIssue(ctx context.Context, in models.IssueInput) (*models.Issue, error)
	UpdateIssue(ctx context.Context, title string, update models.IssueUpdate) (*models.Issue, error)
	DeleteIssue(ctx context.Context, title string) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// view is one mounted screen.
type view interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (view, tea.Cmd)
	View() string
	// Capturing reports whether keystrokes go to a text field, which
	// turns the global shortcuts off.
	Capturing() bool
}

// env is what a view gets at mount. ctx ends when the view is unmounted.
type env struct {
	ctx      context.Context
	api      API
	sessions *session.Store
	log      *zap.Logger
	keys     KeyMap
}

// Config holds the root model's collaborators.
type Config struct {
	API      API
	Sessions *session.Store
	Log      *zap.Logger
	// StartPath is the first path resolved once the session has loaded.
	// Empty means "/".
	StartPath string
}

// Model is the root Bubble Tea model
type Model struct {
	api      API
	sessions *session.Store
	guard    *router.Guard
	log      *zap.Logger
	keys     KeyMap
	help     help.Model

	pending string
	route   router.Route
	gen     int
	cancel  context.CancelFunc
	current view

	alert  string
	notice string

	width  int
	height int
}

// New returns the root model. The session is loaded by Init.
func New(cfg Config) *Model {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := cfg.StartPath
	if start == "" {
		start = router.PathHome
	}
	return &Model{
		api:      cfg.API,
		sessions: cfg.Sessions,
		guard:    router.NewGuard(cfg.Sessions),
		log:      log,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		pending:  start,
		current:  placeholderView{},
	}
}

// Init loads the persisted session.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg {
		return sessionLoadedMsg{err: m.sessions.Init()}
	}
}

// Route returns the mounted route.
func (m *Model) Route() router.Route {
	return m.route
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			m.log.Warn("session store failed to load", zap.Error(msg.err))
		}
		return m, m.navigate(m.pending)

	case navigateMsg:
		return m, m.navigate(msg.path)

	case alertMsg:
		m.alert = msg.text
		return m, nil

	case logoutMsg:
		return m, m.logout("")

	case viewMsg:
		if msg.gen != m.gen {
			m.log.Debug("dropped stale result",
				zap.Int("gen", msg.gen),
				zap.Int("current", m.gen),
				zap.String("type", fmt.Sprintf("%T", msg.msg)),
			)
			return m, nil
		}
		if f, ok := msg.msg.(failure); ok && api.IsUnauthorized(f.failed()) {
			m.log.Info("credential rejected, logging out", zap.Error(f.failed()))
			return m, m.logout("Your session has expired. Please log in again.")
		}
		return m.updateView(msg.msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateView(msg)
}

func (m *Model) updateView(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.current.Update(msg)
	m.current = next
	return m, wrap(m.gen, cmd)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		return m, m.quit()
	}
	if m.alert != "" {
		if key.Matches(msg, m.keys.Enter, m.keys.Back) {
			m.alert = ""
		}
		return m, nil
	}
	m.notice = ""

	if m.current.Capturing() {
		return m.updateView(msg)
	}
	if key.Matches(msg, m.keys.Quit) {
		return m, m.quit()
	}
	if m.guard.State() == router.StateAuthenticated {
		switch {
		case key.Matches(msg, m.keys.Dashboard):
			return m, m.navigate(router.PathHome)
		case key.Matches(msg, m.keys.Issues):
			return m, m.navigate(router.PathIssues)
		case key.Matches(msg, m.keys.NewIssue):
			return m, m.navigate(router.PathNewIssue)
		case key.Matches(msg, m.keys.Profile):
			return m, m.navigate(router.PathProfile)
		case key.Matches(msg, m.keys.Logout):
			return m, m.logout("")
		}
	}
	return m.updateView(msg)
}

func (m *Model) quit() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	return tea.Quit
}

// navigate resolves path through the guard and mounts the resulting view.
// The previous view's context is canceled and its pending results become
// stale.
func (m *Model) navigate(path string) tea.Cmd {
	decision, err := m.guard.Resolve(path)
	if err != nil {
		m.log.Info("unknown path", zap.String("path", path))
		m.notice = "Page not found: " + path
		decision, _ = m.guard.Resolve(router.PathHome)
	}
	if decision.Placeholder {
		m.pending = path
		m.current = placeholderView{}
		return nil
	}

	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.gen++
	m.route = decision.Route
	m.log.Debug("navigate",
		zap.String("requested", path),
		zap.String("route", decision.Route.Path()),
		zap.Bool("redirected", decision.Redirected),
	)

	e := env{ctx: ctx, api: m.api, sessions: m.sessions, log: m.log, keys: m.keys}
	m.current = mount(e, decision.Route)
	return wrap(m.gen, m.current.Init())
}

func mount(e env, route router.Route) view {
	switch route.Name {
	case router.Login:
		return newLoginView(e)
	case router.Signup:
		return newSignupView(e)
	case router.Dashboard:
		return newDashboardView(e)
	case router.IssueList:
		return newListView(e)
	case router.NewIssue:
		return newCreateView(e)
	case router.IssueDetail:
		return newDetailView(e, route.Title)
	case router.Profile:
		return newProfileView(e)
	default:
		return placeholderView{}
	}
}

// logout clears the session and shows the login view with notice.
func (m *Model) logout(notice string) tea.Cmd {
	if err := m.sessions.Logout(); err != nil {
		m.log.Error("failed to clear session", zap.Error(err))
	}
	cmd := m.navigate(router.PathLogin)
	m.notice = notice
	return cmd
}

// View renders the layout: header, sidebar when signed in, the mounted
// view, and the alert overlay.
func (m *Model) View() string {
	var b strings.Builder
	title := "Loading"
	if m.route.Name != 0 {
		title = m.route.Name.String()
	}
	b.WriteString(headerStyle.Render("IssueKeeper · " + title))
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	body := contentStyle.Render(m.current.View())
	if m.route.Private() && m.guard.State() == router.StateAuthenticated {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar(), body)
	}
	if m.alert != "" {
		body = alertStyle.Render(m.alert + "\n\n" + mutedStyle.Render("enter to dismiss"))
		if m.width > 0 && m.height > 0 {
			body = lipgloss.Place(m.width, m.height-3, lipgloss.Center, lipgloss.Center, body)
		}
		b.WriteString(body)
		return b.String()
	}
	b.WriteString(body)
	if m.guard.State() == router.StateAuthenticated && !m.current.Capturing() {
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m *Model) sidebar() string {
	var b strings.Builder
	if s, ok := m.sessions.Snapshot(); ok {
		b.WriteString(titleStyle.Render(s.User.Name))
		b.WriteString("\n")
	}
	active := map[router.Name]int{
		router.Dashboard:   0,
		router.IssueList:   1,
		router.IssueDetail: 1,
		router.NewIssue:    2,
		router.Profile:     3,
	}
	current, ok := active[m.route.Name]
	if !ok {
		current = -1
	}
	for i, binding := range m.keys.sidebar() {
		line := fmt.Sprintf("%s  %s", binding.Help().Key, binding.Help().Desc)
		if i == current {
			line = sidebarActiveStyle.Render("▸ " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("q quit"))
	return sidebarStyle.Render(b.String())
}

// placeholderView renders while the session loads.
type placeholderView struct{}

func (placeholderView) Init() tea.Cmd                    { return nil }
func (p placeholderView) Update(tea.Msg) (view, tea.Cmd) { return p, nil }
func (placeholderView) View() string                     { return mutedStyle.Render("Loading…") }
func (placeholderView) Capturing() bool                  { return false }
