package terminal

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/pkg/executil"
	"github.com/colonyops/herald/pkg/kv"
)

// DefaultOpener returns the platform's URL opener command.
func DefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

// Clients implements intake.WindowClients by launching an opener command.
// URLs opened during the session count as open views; focusing one of them
// succeeds without launching anything.
type Clients struct {
	exec    executil.Executor
	opener  string
	baseURL string
	views   *kv.Store[string, time.Time]
	now     func() time.Time
	logger  zerolog.Logger
}

// NewClients creates window clients. An empty opener uses DefaultOpener.
// Relative URLs are resolved against baseURL when set.
func NewClients(exec executil.Executor, opener, baseURL string) *Clients {
	if opener == "" {
		opener = DefaultOpener()
	}
	return &Clients{
		exec:    exec,
		opener:  opener,
		baseURL: baseURL,
		views:   kv.New[string, time.Time](),
		now:     time.Now,
		logger:  logging.Component("clients"),
	}
}

var _ intake.WindowClients = (*Clients)(nil)

// Focus reports whether a view of rawURL is already open.
func (c *Clients) Focus(ctx context.Context, rawURL string) (bool, error) {
	target, err := c.resolve(rawURL)
	if err != nil {
		return false, err
	}
	if _, ok := c.views.Get(target); !ok {
		return false, nil
	}
	c.views.Set(target, c.now())
	c.logger.Debug().Ctx(ctx).Str("url", target).Msg("focused existing view")
	return true, nil
}

// Open launches the opener for rawURL and records the view.
func (c *Clients) Open(ctx context.Context, rawURL string) error {
	target, err := c.resolve(rawURL)
	if err != nil {
		return err
	}
	if _, err := c.exec.Run(ctx, c.opener, target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	c.views.Set(target, c.now())
	c.logger.Info().Ctx(ctx).Str("url", target).Msg("opened view")
	return nil
}

// Views returns the URLs opened so far.
func (c *Clients) Views() []string {
	return c.views.SortedKeys(func(a, b string) bool { return a < b })
}

func (c *Clients) resolve(rawURL string) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if ref.IsAbs() || c.baseURL == "" {
		return ref.String(), nil
	}
	base, err := url.Parse(strings.TrimRight(c.baseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", c.baseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}
