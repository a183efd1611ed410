package push

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/permission"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const tokenCacheKey = "token"

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = time.Hour

// TokenRequest identifies the installation a token is requested for.
type TokenRequest struct {
	DeviceID string
}

// TokenSource is the push-delivery service port.
type TokenSource interface {
	Acquire(ctx context.Context, req TokenRequest) (string, error)
}

// PermissionReader reports the current permission state.
type PermissionReader interface {
	State(ctx context.Context) permission.State
}

// TokenProvider obtains and caches the delivery token. Tokens are cached in
// memory for the configured TTL and persisted durably so a stale token can
// be used when the delivery service is unreachable.
type TokenProvider struct {
	perm   PermissionReader
	source TokenSource
	states *StateStore
	cache  *gocache.Cache
	logger zerolog.Logger

	acquireMu sync.Mutex

	hookMu    sync.RWMutex
	onAcquire map[int]func(stale bool)
	nextHook  int
}

// NewTokenProvider creates a provider. A ttl of zero uses DefaultTokenTTL.
func NewTokenProvider(perm PermissionReader, source TokenSource, states *StateStore, ttl time.Duration) *TokenProvider {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenProvider{
		perm:   perm,
		source: source,
		states: states,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logging.Component("token"),

		onAcquire: make(map[int]func(stale bool)),
	}
}

// OnAcquire registers a hook fired whenever Token resolves a token from the
// delivery service (stale=false) or from durable storage (stale=true). The
// returned function removes the hook.
func (p *TokenProvider) OnAcquire(fn func(stale bool)) func() {
	p.hookMu.Lock()
	id := p.nextHook
	p.nextHook++
	p.onAcquire[id] = fn
	p.hookMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.hookMu.Lock()
			delete(p.onAcquire, id)
			p.hookMu.Unlock()
		})
	}
}

// Token returns the delivery token. It performs no acquisition unless
// permission is granted and never returns an error: failures resolve to
// ("", false).
func (p *TokenProvider) Token(ctx context.Context) (string, bool) {
	if p.perm.State(ctx) != permission.Granted {
		return "", false
	}

	if tok, ok := p.cached(); ok {
		return tok, true
	}

	p.acquireMu.Lock()
	defer p.acquireMu.Unlock()

	// Another caller may have acquired while we waited.
	if tok, ok := p.cached(); ok {
		return tok, true
	}

	return p.acquire(ctx)
}

// Refresh drops the in-memory token and acquires a new one.
func (p *TokenProvider) Refresh(ctx context.Context) (string, bool) {
	p.acquireMu.Lock()
	defer p.acquireMu.Unlock()

	p.cache.Delete(tokenCacheKey)
	if p.perm.State(ctx) != permission.Granted {
		return "", false
	}
	return p.acquire(ctx)
}

// Forget drops the cached token from memory and durable storage.
func (p *TokenProvider) Forget(ctx context.Context) error {
	p.cache.Delete(tokenCacheKey)
	return p.states.Update(ctx, func(st *RegistrationState) {
		st.Token = ""
	})
}

func (p *TokenProvider) cached() (string, bool) {
	v, ok := p.cache.Get(tokenCacheKey)
	if !ok {
		return "", false
	}
	tok, ok := v.(string)
	return tok, ok && tok != ""
}

func (p *TokenProvider) acquire(ctx context.Context) (string, bool) {
	deviceID, err := p.states.DeviceID(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("device id unavailable")
	}

	tok, err := p.source.Acquire(ctx, TokenRequest{DeviceID: deviceID})
	if err == nil && tok != "" {
		p.cache.SetDefault(tokenCacheKey, tok)
		if err := p.states.Update(ctx, func(st *RegistrationState) { st.Token = tok }); err != nil {
			p.logger.Warn().Err(err).Msg("persisting token failed")
		}
		p.fireAcquire(false)
		return tok, true
	}

	if err == nil {
		err = errors.New("empty token")
	}
	p.logger.Warn().Err(err).Msg("token acquisition failed")

	st, loadErr := p.states.Load(ctx)
	if loadErr != nil || st.Token == "" {
		return "", false
	}

	p.logger.Debug().Msg("using stored token")
	p.fireAcquire(true)
	return st.Token, true
}

func (p *TokenProvider) fireAcquire(stale bool) {
	p.hookMu.RLock()
	hooks := make([]func(bool), 0, len(p.onAcquire))
	for _, fn := range p.onAcquire {
		hooks = append(hooks, fn)
	}
	p.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(stale)
	}
}
