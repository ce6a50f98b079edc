package router

import "sync"

// Sessions is what the guard needs to know about the session store.
type Sessions interface {
	Loading() bool
	Authenticated() bool
}

// State is the guard's view of the session.
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Decision is the outcome of resolving a path.
type Decision struct {
	// Route is the view to render. It is meaningless while Placeholder is
	// set.
	Route Route
	// Redirected is set when Route differs from the requested path.
	Redirected bool
	// Placeholder means the session is still loading and nothing but a
	// loading indicator should render.
	Placeholder bool
}

// Guard gates private routes behind the session.
//
// The guard leaves Loading exactly once, on the first Resolve after the
// session finished loading. Later session changes (login, logout) move
// it between Unauthenticated and Authenticated, never back to Loading.
// Only Reset does that.
type Guard struct {
	sessions Sessions

	mu    sync.Mutex
	state State
}

// NewGuard returns a guard in the Loading state.
func NewGuard(sessions Sessions) *Guard {
	return &Guard{sessions: sessions}
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refreshLocked()
}

// Reset puts the guard back in Loading, for a full reinitialization.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateLoading
}

func (g *Guard) refreshLocked() State {
	if g.state == StateLoading && g.sessions.Loading() {
		return StateLoading
	}
	if g.sessions.Authenticated() {
		g.state = StateAuthenticated
	} else {
		g.state = StateUnauthenticated
	}
	return g.state
}

// Resolve decides what path renders. Unknown paths return ErrNotFound.
func (g *Guard) Resolve(path string) (Decision, error) {
	route, err := Parse(path)
	if err != nil {
		return Decision{}, err
	}
	redirected := path == PathDashboard

	switch g.State() {
	case StateLoading:
		return Decision{Route: route, Placeholder: true}, nil
	case StateUnauthenticated:
		if route.Private() {
			return Decision{Route: Route{Name: Login}, Redirected: true}, nil
		}
	case StateAuthenticated:
		if !route.Private() {
			return Decision{Route: Route{Name: Dashboard}, Redirected: true}, nil
		}
	}
	return Decision{Route: route, Redirected: redirected}, nil
}
