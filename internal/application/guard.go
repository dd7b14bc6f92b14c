package application

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Navigation paths understood by the guard.
const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathCases     = "/cases"
	PathJudges    = "/judges"
	PathLawyers   = "/lawyers"
	PathSchedules = "/schedules"
)

// GuardedPaths are the protected destinations; their sub-paths are protected too.
var GuardedPaths = []string{PathDashboard, PathCases, PathJudges, PathLawyers, PathSchedules}

// Outcome is the result of evaluating a navigation.
type Outcome int

const (
	// Wait means the session is still loading: render nothing or a placeholder.
	Wait Outcome = iota
	// Render means the destination may be shown.
	Render
	// Redirect means the caller must navigate to Decision.Location.
	Redirect
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision tells the caller what to do with a navigation.
type Decision struct {
	Outcome  Outcome
	Location string
	From     string
}

// ReturnPathStore persists the remembered destination between processes.
type ReturnPathStore interface {
	SaveReturnPath(ctx context.Context, path string) error
	TakeReturnPath(ctx context.Context) (string, error)
}

// Guard gates protected destinations on the session state.
type Guard struct {
	session *SessionStore
	store   ReturnPathStore
	logger  *slog.Logger

	mu         sync.Mutex
	returnPath string
}

// NewGuard constructs a Guard reading session.
func NewGuard(session *SessionStore) *Guard {
	return NewGuardWithStore(session, nil, nil)
}

// NewGuardWithStore constructs a Guard that also persists the remembered destination.
func NewGuardWithStore(session *SessionStore, store ReturnPathStore, logger *slog.Logger) *Guard {
	return &Guard{session: session, store: store, logger: defaultLogger(logger)}
}

// IsGuarded reports whether path requires an authenticated session.
func IsGuarded(path string) bool {
	p := normalizePath(path)
	for _, guarded := range GuardedPaths {
		if p == guarded || strings.HasPrefix(p, guarded+"/") {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	p := strings.TrimSpace(path)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// Evaluate decides a navigation without blocking. It must be called on every
// navigation to a guarded path, not once.
func (g *Guard) Evaluate(ctx context.Context, path string) Decision {
	if !IsGuarded(path) {
		return Decision{Outcome: Render}
	}

	state := g.session.State()
	if state.Loading {
		return Decision{Outcome: Wait}
	}
	if state.Identity != nil {
		return Decision{Outcome: Render}
	}

	from := normalizePath(path)
	g.remember(ctx, from)
	return Decision{Outcome: Redirect, Location: PathLogin, From: from}
}

// Await blocks until the session check has resolved and then evaluates path.
func (g *Guard) Await(ctx context.Context, path string) (Decision, error) {
	if IsGuarded(path) {
		select {
		case <-g.session.Ready():
		case <-ctx.Done():
			return Decision{Outcome: Wait}, ctx.Err()
		}
	}
	return g.Evaluate(ctx, path), nil
}

// ReturnPath consumes the remembered destination, defaulting to the dashboard.
func (g *Guard) ReturnPath(ctx context.Context) string {
	g.mu.Lock()
	path := g.returnPath
	g.returnPath = ""
	g.mu.Unlock()

	if g.store != nil {
		stored, err := g.store.TakeReturnPath(ctx)
		if err != nil {
			serviceLogger(ctx, g.logger, "Guard", "ReturnPath").WarnContext(ctx, "failed to load return path", "error", err)
		} else if path == "" {
			path = stored
		}
	}

	if path == "" || !IsGuarded(path) {
		return PathDashboard
	}
	return path
}

func (g *Guard) remember(ctx context.Context, path string) {
	g.mu.Lock()
	g.returnPath = path
	g.mu.Unlock()

	if g.store == nil {
		return
	}
	if err := g.store.SaveReturnPath(ctx, path); err != nil {
		serviceLogger(ctx, g.logger, "Guard", "Evaluate").WarnContext(ctx, "failed to persist return path", "path", path, "error", err)
	}
}
