package push

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/herald/internal/core/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrarFixture struct {
	registrar *Registrar
	backend   *fakeBackend
	source    *fakeSource
	states    *StateStore
	clock     *clock
}

func newRegistrarFixture(t *testing.T, perm PermissionReader) registrarFixture {
	t.Helper()
	states := newStates(t)
	src := &fakeSource{token: "tok-abc"}
	backend := &fakeBackend{}
	clk := newClock()
	tokens := NewTokenProvider(perm, src, states, 0)

	return registrarFixture{
		registrar: NewRegistrar(tokens, backend, states, WithClock(clk.Now)),
		backend:   backend,
		source:    src,
		states:    states,
		clock:     clk,
	}
}

func testDescriptor() Descriptor {
	return DescribeDevice("Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0 Safari/537.36", "1.4.2", "")
}

func TestRegistrar_CooldownWindow(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	f.clock.Advance(time.Minute)
	requireOutcome(t, Skipped, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	assert.Equal(t, 1, f.backend.RegisterCalls())

	f.clock.Advance(Cooldown)
	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	assert.Equal(t, 2, f.backend.RegisterCalls())
}

func TestRegistrar_CooldownBoundaryIsInclusive(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	f.clock.Advance(Cooldown)
	res := f.registrar.RegisterIfDue(ctx, "42", testDescriptor())
	requireOutcome(t, Skipped, res)
	assert.Equal(t, f.clock.Now(), res.Next)

	f.clock.Advance(time.Nanosecond)
	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
}

func TestRegistrar_FailureDoesNotAdvanceTimestamp(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))
	f.backend.err = errBoom

	res := f.registrar.RegisterIfDue(ctx, "42", testDescriptor())
	requireOutcome(t, Failed, res)
	assert.ErrorIs(t, res.Err, ErrRegistrationFailed)
	assert.ErrorIs(t, res.Err, errBoom)

	st, err := f.states.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.LastRegisteredAt.IsZero())

	f.clock.Advance(time.Second)
	f.backend.err = nil
	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	assert.Equal(t, 2, f.backend.RegisterCalls())
}

func TestRegistrar_SuccessPersistsState(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	res := f.registrar.RegisterIfDue(ctx, "42", testDescriptor())
	requireOutcome(t, Registered, res)
	assert.Equal(t, "tok-abc", res.Token)

	st, err := f.states.Load(ctx)
	require.NoError(t, err)
	assert.True(t, f.clock.Now().Equal(st.LastRegisteredAt))
	assert.Equal(t, "tok-abc", st.Token)
	assert.NotEmpty(t, st.DeviceID)

	req := f.backend.registers[0]
	assert.Equal(t, "42", f.backend.lastUserID)
	assert.Equal(t, st.DeviceID, req.DeviceID)
	assert.Equal(t, "Chrome on Linux", req.DeviceName)
	assert.Equal(t, PlatformWeb, req.Platform)
	assert.Equal(t, "1.4.2", req.AppVersion)
}

func TestRegistrar_NoTokenFails(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Denied))

	res := f.registrar.RegisterIfDue(ctx, "42", testDescriptor())
	requireOutcome(t, Failed, res)
	assert.ErrorIs(t, res.Err, ErrTokenUnavailable)
	assert.Equal(t, 0, f.backend.RegisterCalls())
}

func TestRegistrar_MissingUserID(t *testing.T) {
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	res := f.registrar.RegisterIfDue(context.Background(), "", testDescriptor())
	requireOutcome(t, Failed, res)
	assert.True(t, IsFailure(res.Err))
	assert.Equal(t, 0, f.source.Calls())
}

func TestRegistrar_InvalidDescriptor(t *testing.T) {
	f := newRegistrarFixture(t, staticPermission(permission.Granted))
	d := testDescriptor()
	d.DeviceType = "toaster"

	res := f.registrar.RegisterIfDue(context.Background(), "42", d)
	requireOutcome(t, Failed, res)
	assert.ErrorIs(t, res.Err, ErrRegistrationFailed)
	assert.Equal(t, 0, f.backend.RegisterCalls())
}

func TestRegistrar_ForceIgnoresCooldown(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	requireOutcome(t, Registered, f.registrar.Register(ctx, "42", testDescriptor()))
	assert.Equal(t, 2, f.backend.RegisterCalls())
}

func TestRegistrar_ConcurrentCallsRegisterOnce(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.registrar.RegisterIfDue(ctx, "42", testDescriptor())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, f.backend.RegisterCalls())
}

func TestRegistrar_Unregister(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	require.NoError(t, f.registrar.Unregister(ctx, "42"))

	require.Len(t, f.backend.unregisters, 1)
	assert.Equal(t, "tok-abc", f.backend.unregisters[0].Token)

	_, due, err := f.registrar.Status(ctx)
	require.NoError(t, err)
	assert.True(t, due)

	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
}

func TestRegistrar_UnregisterBackendError(t *testing.T) {
	ctx := context.Background()
	f := newRegistrarFixture(t, staticPermission(permission.Granted))

	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	f.backend.err = errBoom

	err := f.registrar.Unregister(ctx, "42")
	assert.ErrorIs(t, err, ErrRegistrationFailed)

	_, due, err := f.registrar.Status(ctx)
	require.NoError(t, err)
	assert.False(t, due, "failed unregister keeps the cooldown")
}

// permissionHost simulates a host whose prompt grants permission.
type permissionHost struct {
	state permission.State
}

func (h *permissionHost) Supported(context.Context) bool { return true }

func (h *permissionHost) Current(context.Context) (permission.State, error) {
	return h.state, nil
}

func (h *permissionHost) Prompt(context.Context) (permission.State, error) {
	h.state = permission.Granted
	return h.state, nil
}

func TestRegistrar_DefaultThenGrantedRegistersOnce(t *testing.T) {
	ctx := context.Background()
	gate := permission.NewGate(&permissionHost{state: permission.Default})
	f := newRegistrarFixture(t, gate)

	require.Equal(t, permission.Default, gate.State(ctx))
	requireOutcome(t, Failed, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))
	assert.Equal(t, 0, f.backend.RegisterCalls())

	require.Equal(t, permission.Granted, gate.Request(ctx))
	requireOutcome(t, Registered, f.registrar.RegisterIfDue(ctx, "42", testDescriptor()))

	require.Equal(t, 1, f.backend.RegisterCalls())
	assert.NotEmpty(t, f.backend.registers[0].Token)
}
