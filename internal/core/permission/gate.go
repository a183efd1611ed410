package permission

import (
	"context"
	"sync"

	"github.com/colonyops/herald/internal/core/logging"
	"github.com/rs/zerolog"
)

// Host is the host environment's permission primitive.
type Host interface {
	// Supported reports whether the host can display notifications and run
	// a background handler.
	Supported(ctx context.Context) bool
	// Current returns the host's stored permission flag.
	Current(ctx context.Context) (State, error)
	// Prompt asks the user and returns the resulting flag.
	Prompt(ctx context.Context) (State, error)
}

// Gate wraps a Host and tracks the last observed state so transitions can be
// reported to watchers.
type Gate struct {
	host   Host
	logger zerolog.Logger

	mu       sync.Mutex
	last     State
	watchers map[int]func(prev, next State)
	nextID   int
}

// NewGate creates a gate over host.
func NewGate(host Host) *Gate {
	return &Gate{
		host:     host,
		logger:   logging.Component("permission"),
		watchers: make(map[int]func(prev, next State)),
	}
}

// State returns the current permission. Host errors resolve to Denied.
func (g *Gate) State(ctx context.Context) State {
	if !g.host.Supported(ctx) {
		return g.observe(Unsupported)
	}

	st, err := g.host.Current(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("reading permission failed")
		return g.observe(Denied)
	}
	return g.observe(sanitize(st))
}

// Request prompts the host once. It must only be called in response to an
// explicit user action. Host errors resolve to Denied and are logged, not
// returned.
func (g *Gate) Request(ctx context.Context) State {
	if !g.host.Supported(ctx) {
		return g.observe(Unsupported)
	}

	st, err := g.host.Prompt(ctx)
	if err != nil {
		g.logger.Warn().Err(err).Msg("permission prompt failed")
		return g.observe(Denied)
	}

	st = sanitize(st)
	g.logger.Info().Str("state", st.String()).Msg("permission requested")
	return g.observe(st)
}

// Last returns the most recently observed state without consulting the host.
// It is empty until State or Request has been called.
func (g *Gate) Last() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Watch registers fn to be called on every observed transition, including
// the first observation. The returned function removes the watcher.
func (g *Gate) Watch(fn func(prev, next State)) func() {
	g.mu.Lock()
	id := g.nextID
	g.nextID++
	g.watchers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

func (g *Gate) observe(st State) State {
	g.mu.Lock()
	old := g.last
	g.last = st
	if old == st {
		g.mu.Unlock()
		return st
	}
	fns := make([]func(prev, next State), 0, len(g.watchers))
	for _, fn := range g.watchers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		fn(old, st)
	}
	return st
}

// sanitize maps unknown host values to Default.
func sanitize(st State) State {
	if _, err := ParseState(string(st)); err != nil {
		return Default
	}
	return st
}
