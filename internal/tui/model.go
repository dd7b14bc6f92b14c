package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/views"
)

// Options are the services the console drives.
type Options struct {
	Auth      *application.AuthService
	Session   *application.SessionStore
	Guard     *application.Guard
	Resources *application.Resources
	Refresher *application.Refresher
	Logger    *slog.Logger
	Now       func() time.Time
	TrendDays int
	// Route is the first view to open; the dashboard when empty.
	Route string
}

// routes lists the views in tab order.
var routes = []struct {
	path  string
	title string
	key   string
}{
	{application.PathDashboard, "Dashboard", "1"},
	{application.PathCases, "Cases", "2"},
	{application.PathJudges, "Judges", "3"},
	{application.PathLawyers, "Lawyers", "4"},
	{application.PathSchedules, "Schedules", "5"},
}

type (
	sessionMsg  application.SessionState
	snapshotMsg application.Snapshot
	loginMsg    struct {
		user application.User
		err  error
	}
	logoutMsg     struct{ err error }
	refreshMsg    struct{ err error }
	regenerateMsg struct{ err error }
)

// Model is the root bubbletea model of the live console.
type Model struct {
	ctx  context.Context
	opts Options

	sessions  <-chan application.SessionState
	snapshots <-chan application.Snapshot

	width  int
	height int

	route     string
	waiting   bool
	session   application.SessionState
	snapshot  application.Snapshot
	dashboard views.Dashboard

	login     loginForm
	search    textinput.Model
	searching bool
	selected  int
	spinner   spinner.Model

	status    string
	statusErr bool
}

// NewModel builds the console. sessions and snapshots are the subscriptions
// the model listens on; either may be nil.
func NewModel(ctx context.Context, opts Options, sessions <-chan application.SessionState, snapshots <-chan application.Snapshot) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	route := opts.Route
	if route == "" || route == application.PathLogin {
		route = application.PathDashboard
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search"
	search.CharLimit = 64

	m := Model{
		ctx:       ctx,
		opts:      opts,
		sessions:  sessions,
		snapshots: snapshots,
		route:     route,
		session:   opts.Session.State(),
		snapshot:  opts.Refresher.Snapshot(),
		login:     newLoginForm(),
		search:    search,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(selectedStyle)),
	}
	m.dashboard = views.Compose(m.snapshot, opts.Now(), opts.TrendDays)
	m, _ = m.navigate(route)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		listenSession(m.sessions),
		listenSnapshots(m.snapshots),
		m.checkSession(),
	)
}

func listenSession(ch <-chan application.SessionState) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg(state)
	}
}

func listenSnapshots(ch <-chan application.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) checkSession() tea.Cmd {
	if !m.session.Loading {
		return nil
	}
	return func() tea.Msg {
		return sessionMsg(m.opts.Auth.CheckSession(m.ctx))
	}
}

// navigate asks the guard whether path may render and follows its decision.
func (m Model) navigate(path string) (Model, tea.Cmd) {
	decision := m.opts.Guard.Evaluate(m.ctx, path)
	switch decision.Outcome {
	case application.Wait:
		m.route = path
		m.waiting = true
		return m, nil
	case application.Redirect:
		if m.route != application.PathLogin {
			m.login = newLoginForm()
		}
		m.route = application.PathLogin
		m.waiting = false
		return m, textinput.Blink
	}

	if m.route != path {
		m.selected = 0
		m.searching = false
		m.search.Blur()
		m.search.Reset()
	}
	m.route = path
	m.waiting = false
	return m, nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionMsg:
		return m.applySession(application.SessionState(msg))

	case snapshotMsg:
		m.snapshot = application.Snapshot(msg)
		m.dashboard = views.Compose(m.snapshot, m.opts.Now(), m.opts.TrendDays)
		m = m.clampSelection()
		return m, listenSnapshots(m.snapshots)

	case loginMsg:
		if msg.err != nil {
			m.login = m.login.failed(loginFailure(msg.err))
			return m, nil
		}
		m.login = newLoginForm()
		m.setStatus("Signed in as "+msg.user.DisplayName(), false)
		m.opts.Refresher.Start(m.ctx)
		m.opts.Refresher.Trigger()
		m.session = m.opts.Session.State()
		return m.navigate(m.opts.Guard.ReturnPath(m.ctx))

	case logoutMsg:
		if msg.err != nil {
			m.setStatus("Logout failed on the server; local session cleared", true)
		} else {
			m.setStatus("Signed out", false)
		}
		m.session = m.opts.Session.State()
		m.snapshot = m.opts.Refresher.Snapshot()
		m.dashboard = views.Compose(m.snapshot, m.opts.Now(), m.opts.TrendDays)
		m.selected = 0
		return m.navigate(m.route)

	case refreshMsg:
		switch {
		case msg.err == nil:
			m.setStatus("Refreshed", false)
		case errors.Is(msg.err, application.ErrRefreshInFlight):
			m.setStatus("A refresh is already running", false)
		default:
			m.setStatus("Refresh finished with errors", true)
		}
		return m, nil

	case regenerateMsg:
		if msg.err != nil {
			m.setStatus("Regenerate failed: "+msg.err.Error(), true)
			return m, nil
		}
		m.setStatus("Schedule regenerated", false)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) applySession(state application.SessionState) (tea.Model, tea.Cmd) {
	m.session = state
	listen := listenSession(m.sessions)
	var pause tea.Cmd
	switch {
	case state.Authenticated():
		m.opts.Refresher.Start(m.ctx)
	case !state.Loading && !m.opts.Refresher.Paused():
		pause = m.pauseRefresher
	}

	var cmd tea.Cmd
	if m.route == application.PathLogin {
		if state.Authenticated() && !m.login.submitting {
			m, cmd = m.navigate(m.opts.Guard.ReturnPath(m.ctx))
		}
	} else {
		m, cmd = m.navigate(m.route)
	}
	return m, tea.Batch(listen, pause, cmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.route == application.PathLogin {
		if msg.String() == "esc" {
			return m, tea.Quit
		}
		form, cmd, submit := m.login.update(msg)
		m.login = form
		if submit {
			return m, m.submitLogin(form.username(), form.password())
		}
		return m, cmd
	}

	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.search.Blur()
			m.search.Reset()
			return m, nil
		case "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.selected = 0
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		for _, r := range routes {
			if r.key == msg.String() {
				return m.navigate(r.path)
			}
		}
	case "tab":
		return m.navigate(routes[(m.routeIndex()+1)%len(routes)].path)
	case "shift+tab":
		return m.navigate(routes[(m.routeIndex()+len(routes)-1)%len(routes)].path)
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		m.selected++
		return m.clampSelection(), nil
	case "/":
		if m.route == application.PathDashboard {
			return m, nil
		}
		m.searching = true
		return m, m.search.Focus()
	case "r":
		if m.waiting {
			return m, nil
		}
		m.setStatus("Refreshing...", false)
		return m, m.refresh()
	case "g":
		if m.waiting {
			return m, nil
		}
		m.setStatus("Regenerating schedule...", false)
		return m, m.regenerate()
	case "L":
		return m, m.logout()
	}
	return m, nil
}

func (m Model) routeIndex() int {
	for i, r := range routes {
		if r.path == m.route {
			return i
		}
	}
	return 0
}

// clampSelection keeps the cursor inside the visible list.
func (m Model) clampSelection() Model {
	n := m.visibleRows()
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	return m
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) submitLogin(username, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.opts.Auth.Login(m.ctx, username, password)
		return loginMsg{user: user, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.pauseRefresher()
		return logoutMsg{err: m.opts.Auth.Logout(m.ctx)}
	}
}

// pauseRefresher stops polling and drops the signed out user's collections.
func (m Model) pauseRefresher() tea.Msg {
	if err := m.opts.Refresher.Pause(m.ctx); err != nil {
		m.opts.Logger.WarnContext(m.ctx, "clear cached collections failed", "error", err)
	}
	return nil
}

func (m Model) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{err: m.opts.Refresher.RefreshNow(m.ctx)}
	}
}

func (m Model) regenerate() tea.Cmd {
	return func() tea.Msg {
		_, err := m.opts.Resources.Regenerate(m.ctx)
		return regenerateMsg{err: err}
	}
}

func loginFailure(err error) string {
	var authErr *application.AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return err.Error()
}
