package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/courtdesk/internal/application"
	"github.com/example/courtdesk/internal/stubapi"
	"github.com/example/courtdesk/internal/testfixtures"
)

var monday = testfixtures.ReferenceTime()

func newTestOptions(t *testing.T, route string) Options {
	t.Helper()

	backend := testfixtures.NewBackend(t)
	console := testfixtures.NewConsole(t, backend)
	return Options{
		Auth:      console.Auth,
		Session:   console.Session,
		Guard:     console.Guard,
		Resources: console.Resources,
		Refresher: console.Refresher,
		Now:       backend.Clock.Now,
		TrendDays: 7,
		Route:     route,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

// signedIn returns a model whose session is already authenticated.
func signedIn(t *testing.T, route string) (Model, Options) {
	t.Helper()
	ctx := context.Background()
	opts := newTestOptions(t, route)
	opts.Auth.CheckSession(ctx)
	if _, err := opts.Auth.Login(ctx, stubapi.DemoUsername, stubapi.DemoPassword); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	return NewModel(ctx, opts, nil, nil), opts
}

func testSnapshot() application.Snapshot {
	amina := testfixtures.NewJudge(testfixtures.WithJudgeID("1"), testfixtures.WithJudgeName("Hon. Amina Odhiambo"))
	peter := testfixtures.NewJudge(testfixtures.WithJudgeID("2"), testfixtures.WithJudgeName("Hon. Peter Kamau"), testfixtures.WithCourt("Magistrates Court"))
	daniel := testfixtures.NewLawyer(testfixtures.WithLawyerID("1"), testfixtures.WithLawyerName("Daniel Mwangi"))

	assigned := testfixtures.NewCase(
		testfixtures.WithCaseID("1"),
		testfixtures.WithCaseNumber("HCCC/001/2025"),
		testfixtures.WithJudge(amina.ID),
		testfixtures.WithLawyers(daniel.ID),
	)
	pending := testfixtures.NewCase(
		testfixtures.WithCaseID("2"),
		testfixtures.WithCaseNumber("CR/114/2025"),
		testfixtures.WithCaseType(application.CaseTypeCriminal),
		testfixtures.WithUrgency(0.9),
	)
	hearing := testfixtures.NewSchedule(assigned.ID, amina.ID, testfixtures.WithScheduleID("1"))

	return testfixtures.Snapshot(monday,
		[]application.Case{assigned, pending},
		[]application.Judge{amina, peter},
		[]application.Lawyer{daniel},
		[]application.Schedule{hearing},
	)
}

func TestModel_WaitsForSessionCheck(t *testing.T) {
	t.Parallel()

	m := NewModel(context.Background(), newTestOptions(t, application.PathJudges), nil, nil)
	if !m.waiting || m.route != application.PathJudges {
		t.Fatalf("expected to wait on %s, got route %s waiting %v", application.PathJudges, m.route, m.waiting)
	}
	if view := m.View(); !strings.Contains(view, "Checking session") {
		t.Fatalf("expected session placeholder, got %q", view)
	}
	if m.Init() == nil {
		t.Fatal("expected Init to schedule the session check")
	}
}

func TestModel_LoginReturnsToRequestedView(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	opts := newTestOptions(t, application.PathCases)
	m := NewModel(ctx, opts, nil, nil)

	m, _ = update(t, m, sessionMsg(opts.Auth.CheckSession(ctx)))
	if m.route != application.PathLogin {
		t.Fatalf("expected redirect to login, got %s", m.route)
	}
	if view := m.View(); !strings.Contains(view, "Sign in") {
		t.Fatalf("expected login form, got %q", view)
	}

	m, _ = update(t, m, keyRunes(stubapi.DemoUsername))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, keyRunes("wrong"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.login.submitting {
		t.Fatal("expected enter on the password field to submit")
	}
	m, _ = update(t, m, cmd())
	if m.route != application.PathLogin || m.login.err != "Invalid credentials" {
		t.Fatalf("expected rejected login, got route %s err %q", m.route, m.login.err)
	}
	if m.login.password() != "" {
		t.Fatal("expected the password to be cleared after a failed attempt")
	}

	m, _ = update(t, m, keyRunes(stubapi.DemoPassword))
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a login command")
	}
	m, _ = update(t, m, cmd())
	if m.route != application.PathCases {
		t.Fatalf("expected to return to %s, got %s", application.PathCases, m.route)
	}
	if m.session.Identity == nil || m.session.Identity.Username != stubapi.DemoUsername {
		t.Fatalf("expected signed in session, got %+v", m.session)
	}
}

func TestModel_LoginRequiresBothFields(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	opts := newTestOptions(t, application.PathDashboard)
	m := NewModel(ctx, opts, nil, nil)
	m, _ = update(t, m, sessionMsg(opts.Auth.CheckSession(ctx)))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.login.submitting || cmd != nil {
		t.Fatal("expected empty form not to submit")
	}
	if m.login.err != "Username and password are required" {
		t.Fatalf("unexpected form error %q", m.login.err)
	}
}

func TestModel_RendersViews(t *testing.T) {
	t.Parallel()

	m, _ := signedIn(t, application.PathDashboard)
	if view := m.View(); !strings.Contains(view, "Loading") {
		t.Fatalf("expected loading spinner before the first snapshot, got %q", view)
	}

	m, _ = update(t, m, snapshotMsg(testSnapshot()))
	view := m.View()
	for _, want := range []string{"Total cases", "Scheduled today", "Recent hearings", "CR/114/2025"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q on the dashboard, got %q", want, view)
		}
	}
	if m.dashboard.Stats.ScheduledToday != 1 || m.dashboard.Stats.PendingCases != 1 {
		t.Fatalf("unexpected stats %+v", m.dashboard.Stats)
	}

	m, _ = update(t, m, keyRunes("2"))
	if m.route != application.PathCases {
		t.Fatalf("expected cases view, got %s", m.route)
	}
	m, _ = update(t, m, keyRunes("/"))
	m, _ = update(t, m, keyRunes("CR"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	view = m.View()
	if !strings.Contains(view, "CR/114/2025") || strings.Contains(view, "HCCC/001/2025") {
		t.Fatalf("expected search to filter cases, got %q", view)
	}

	m, _ = update(t, m, keyRunes("3"))
	if m.search.Value() != "" {
		t.Fatal("expected navigation to clear the search")
	}
	view = m.View()
	if !strings.Contains(view, "Hearings for Hon. Amina Odhiambo") || !strings.Contains(view, "Courtroom 1") {
		t.Fatalf("expected the first judge's hearings, got %q", view)
	}

	m, _ = update(t, m, keyRunes("j"))
	if view := m.View(); !strings.Contains(view, "Hearings for Hon. Peter Kamau") {
		t.Fatalf("expected selection to move to the second judge, got %q", view)
	}
	m, _ = update(t, m, keyRunes("j"))
	if m.selected != 1 {
		t.Fatalf("expected selection clamped to 1, got %d", m.selected)
	}

	m, _ = update(t, m, keyRunes("4"))
	if view := m.View(); !strings.Contains(view, "1/10") || !strings.Contains(view, "Cases for Daniel Mwangi") {
		t.Fatalf("expected lawyer case counts, got %q", view)
	}
}

func TestModel_ShowsStaleCollections(t *testing.T) {
	t.Parallel()

	m, _ := signedIn(t, application.PathDashboard)
	snap := testfixtures.WithFailure(testSnapshot(), application.ResourceJudges, application.ErrNotAuthenticated)

	m, _ = update(t, m, snapshotMsg(snap))
	if view := m.View(); !strings.Contains(view, "judges could not be refreshed") {
		t.Fatalf("expected stale collection warning, got %q", view)
	}
}

func TestModel_LogoutRedirectsToLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, opts := signedIn(t, application.PathSchedules)
	opts.Refresher.Start(ctx)
	defer opts.Refresher.Stop()
	if err := opts.Refresher.RefreshNow(ctx); err != nil && !errors.Is(err, application.ErrRefreshInFlight) {
		t.Fatalf("RefreshNow returned error: %v", err)
	}

	m, cmd := update(t, m, keyRunes("L"))
	if cmd == nil {
		t.Fatal("expected a logout command")
	}
	m, _ = update(t, m, cmd())
	if m.route != application.PathLogin {
		t.Fatalf("expected login after logout, got %s", m.route)
	}
	if opts.Session.State().Authenticated() {
		t.Fatal("expected session to be cleared")
	}

	if !opts.Refresher.Paused() {
		t.Fatal("expected polling to stop after logout")
	}
	if err := opts.Refresher.RefreshNow(ctx); !errors.Is(err, application.ErrRefresherPaused) {
		t.Fatalf("expected refreshes to be refused after logout, got %v", err)
	}
	if snap := opts.Refresher.Snapshot(); len(snap.Cases) != 0 || len(snap.Judges) != 0 {
		t.Fatalf("expected the signed out user's collections to be dropped, got %d cases", len(snap.Cases))
	}
	if len(m.snapshot.Cases) != 0 {
		t.Fatalf("expected the console to drop cached cases, got %d", len(m.snapshot.Cases))
	}
}

func TestModel_ExpiredSessionPausesRefresher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, opts := signedIn(t, application.PathJudges)
	opts.Refresher.Start(ctx)
	defer opts.Refresher.Stop()

	if err := opts.Auth.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	m, cmd := update(t, m, sessionMsg(opts.Session.State()))
	if m.route != application.PathLogin {
		t.Fatalf("expected login for an anonymous session, got %s", m.route)
	}
	runCmds(cmd)
	if !opts.Refresher.Paused() {
		t.Fatal("expected polling to stop for an anonymous session")
	}

	if _, err := opts.Auth.Login(ctx, stubapi.DemoUsername, stubapi.DemoPassword); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	m, _ = update(t, m, sessionMsg(opts.Session.State()))
	if opts.Refresher.Paused() {
		t.Fatal("expected polling to resume once signed in again")
	}
	if m.route != application.PathJudges {
		t.Fatalf("expected to return to judges, got %s", m.route)
	}
}

// runCmds executes cmd and any commands it batches, dropping their messages.
func runCmds(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmds(c)
		}
	}
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	m, _ := signedIn(t, application.PathDashboard)
	_, cmd := update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
