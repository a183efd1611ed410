package push

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/data/stores"
	"github.com/stretchr/testify/require"
)

type staticPermission permission.State

func (p staticPermission) State(context.Context) permission.State { return permission.State(p) }

type fakeSource struct {
	mu     sync.Mutex
	token  string
	err    error
	calls  int
	lastID string
}

func (s *fakeSource) Acquire(_ context.Context, req TokenRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastID = req.DeviceID
	return s.token, s.err
}

func (s *fakeSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fakeBackend struct {
	mu          sync.Mutex
	err         error
	registers   []RegisterRequest
	unregisters []UnregisterRequest
	lastUserID  string
}

func (b *fakeBackend) RegisterDevice(_ context.Context, userID string, req RegisterRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUserID = userID
	b.registers = append(b.registers, req)
	return b.err
}

func (b *fakeBackend) UnregisterDevice(_ context.Context, userID string, req UnregisterRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastUserID = userID
	b.unregisters = append(b.unregisters, req)
	return b.err
}

func (b *fakeBackend) RegisterCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.registers)
}

// clock is a controllable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBoom = errors.New("boom")

func newStates(t *testing.T) *StateStore {
	t.Helper()
	return NewStateStore(stores.NewMemoryKV())
}

func requireOutcome(t *testing.T, want Outcome, got Result) {
	t.Helper()
	require.Equalf(t, want, got.Outcome, "result error: %v", got.Err)
}
