package push

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/herald/internal/core/logging"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Cooldown is the minimum interval between registration attempts that
// reach the backend.
const Cooldown = 5 * time.Minute

// RegisterRequest is the body sent to the device registry.
type RegisterRequest struct {
	Token string `json:"token" validate:"required"`
	Descriptor
}

// UnregisterRequest is the body sent when removing the device.
type UnregisterRequest struct {
	Token    string `json:"token" validate:"required"`
	DeviceID string `json:"deviceId" validate:"required"`
}

// Backend is the device registry port.
type Backend interface {
	RegisterDevice(ctx context.Context, userID string, req RegisterRequest) error
	UnregisterDevice(ctx context.Context, userID string, req UnregisterRequest) error
}

// Tokener supplies the delivery token.
type Tokener interface {
	Token(ctx context.Context) (string, bool)
}

// Outcome classifies a registration attempt.
type Outcome int

const (
	Skipped Outcome = iota
	Registered
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Registered:
		return "registered"
	default:
		return "failed"
	}
}

// Result is the outcome of a registration attempt. Err is set only when
// Outcome is Failed.
type Result struct {
	Outcome Outcome
	Err     error
	// Token is the token sent to the backend on success.
	Token string
	// Next is the earliest time another attempt will reach the backend.
	Next time.Time
}

func failed(err error) Result {
	return Result{Outcome: Failed, Err: err}
}

// Registrar registers the device with the backend, at most once per Cooldown.
type Registrar struct {
	tokens   Tokener
	backend  Backend
	states   *StateStore
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger

	mu sync.Mutex
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithClock overrides the time source.
func WithClock(now func() time.Time) RegistrarOption {
	return func(r *Registrar) {
		r.now = now
	}
}

// NewRegistrar creates a Registrar.
func NewRegistrar(tokens Tokener, backend Backend, states *StateStore, opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		tokens:   tokens,
		backend:  backend,
		states:   states,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		logger:   logging.Component("registrar"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterIfDue registers the device unless a successful registration
// happened within the cooldown window. Skipped attempts make no network call.
func (r *Registrar) RegisterIfDue(ctx context.Context, userID string, d Descriptor) Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	st, err := r.states.Load(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("registration state unreadable, treating as never registered")
		st = RegistrationState{}
	}

	last := st.LastRegisteredAt
	if last.IsZero() {
		last = time.Unix(0, 0)
	}
	if now.Sub(last) <= Cooldown {
		r.logger.Debug().Time("last_registered_at", last).Msg("registration skipped: cooldown")
		return Result{Outcome: Skipped, Next: last.Add(Cooldown)}
	}

	return r.register(ctx, userID, d, now)
}

// Register registers the device regardless of the cooldown.
func (r *Registrar) Register(ctx context.Context, userID string, d Descriptor) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(ctx, userID, d, r.now())
}

func (r *Registrar) register(ctx context.Context, userID string, d Descriptor, now time.Time) Result {
	if userID == "" {
		return failed(fmt.Errorf("%w: user id is required", ErrRegistrationFailed))
	}

	tok, ok := r.tokens.Token(ctx)
	if !ok {
		return failed(ErrTokenUnavailable)
	}

	if d.DeviceID == "" {
		id, err := r.states.DeviceID(ctx)
		if err != nil {
			return failed(fmt.Errorf("%w: %w", ErrRegistrationFailed, err))
		}
		d.DeviceID = id
	}

	req := RegisterRequest{Token: tok, Descriptor: d}
	if err := r.validate.Struct(req); err != nil {
		return failed(fmt.Errorf("%w: invalid request: %w", ErrRegistrationFailed, err))
	}

	ctx = logging.WithDeviceID(logging.WithUserID(ctx, userID), d.DeviceID)
	if err := r.backend.RegisterDevice(ctx, userID, req); err != nil {
		r.logger.Error().Ctx(ctx).Err(err).Msg("device registration failed")
		return failed(fmt.Errorf("%w: %w", ErrRegistrationFailed, err))
	}

	err := r.states.Update(ctx, func(st *RegistrationState) {
		st.LastRegisteredAt = now
		st.Token = tok
		st.DeviceID = d.DeviceID
	})
	if err != nil {
		r.logger.Warn().Ctx(ctx).Err(err).Msg("persisting registration time failed")
	}

	r.logger.Info().Ctx(ctx).Str("device", d.DeviceName).Msg("device registered")
	return Result{Outcome: Registered, Token: tok, Next: now.Add(Cooldown)}
}

// Unregister removes the device from the registry and clears the cooldown
// so the next registration attempt is due immediately.
func (r *Registrar) Unregister(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrRegistrationFailed)
	}

	st, err := r.states.Load(ctx)
	if err != nil {
		return err
	}

	tok := st.Token
	if tok == "" {
		var ok bool
		if tok, ok = r.tokens.Token(ctx); !ok {
			return ErrTokenUnavailable
		}
	}

	req := UnregisterRequest{Token: tok, DeviceID: st.DeviceID}
	if err := r.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: invalid request: %w", ErrRegistrationFailed, err)
	}

	ctx = logging.WithDeviceID(logging.WithUserID(ctx, userID), st.DeviceID)
	if err := r.backend.UnregisterDevice(ctx, userID, req); err != nil {
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	return r.states.Update(ctx, func(st *RegistrationState) {
		st.LastRegisteredAt = time.Time{}
	})
}

// Status reports the stored registration state and whether an attempt is
// currently due.
func (r *Registrar) Status(ctx context.Context) (RegistrationState, bool, error) {
	st, err := r.states.Load(ctx)
	if err != nil {
		return st, true, err
	}
	return st, st.LastRegisteredAt.IsZero() || r.now().Sub(st.LastRegisteredAt) > Cooldown, nil
}

// IsFailure reports whether err came from a registration attempt.
func IsFailure(err error) bool {
	return errors.Is(err, ErrRegistrationFailed) || errors.Is(err, ErrTokenUnavailable)
}
