// Package updatecheck reports when a newer herald release is published.
package updatecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"

	"github.com/colonyops/herald/internal/core/kv"
	"github.com/colonyops/herald/internal/core/logging"
)

const (
	cacheTTL       = 24 * time.Hour
	cacheNamespace = "update-check"
	cacheKey       = "latest"

	// DefaultReleaseURL is the GitHub API endpoint for the latest release.
	DefaultReleaseURL = "https://api.github.com/repos/colonyops/herald/releases/latest"
)

// ReleaseInfo is the cached release data returned by GitHub.
type ReleaseInfo struct {
	TagName     string    `json:"tag_name"`
	PublishedAt string    `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Result is returned when a newer version is available.
type Result struct {
	Current string
	Latest  string
}

func (r Result) String() string {
	return fmt.Sprintf("herald %s is available (running %s)", r.Latest, r.Current)
}

// Checker looks up the latest release at most once per cacheTTL, caching the
// answer in durable storage.
type Checker struct {
	cache  *kv.TypedKV[ReleaseInfo]
	url    string
	client *http.Client
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithReleaseURL overrides the release endpoint.
func WithReleaseURL(url string) Option {
	return func(c *Checker) { c.url = url }
}

// New creates a checker caching releases in store.
func New(store kv.KV, opts ...Option) *Checker {
	c := &Checker{
		cache:  kv.Scoped[ReleaseInfo](store, cacheNamespace),
		url:    DefaultReleaseURL,
		client: &http.Client{Timeout: 5 * time.Second},
		now:    time.Now,
		logger: logging.Component("updatecheck"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check compares currentVersion to the latest release and returns a non-nil
// Result only when an update is available. Lookup failures are logged and
// reported as no update.
func (c *Checker) Check(ctx context.Context, currentVersion string) (*Result, error) {
	if currentVersion == "" || currentVersion == "dev" {
		return nil, nil
	}

	current, ok := normalizeVersion(currentVersion)
	if !ok {
		c.logger.Debug().Str("version", currentVersion).Msg("invalid current version")
		return nil, nil
	}

	release, err := c.latest(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("failed to get latest release")
		return nil, nil
	}

	latest, ok := normalizeVersion(release.TagName)
	if !ok {
		c.logger.Debug().Str("tag", release.TagName).Msg("invalid release tag")
		return nil, nil
	}

	if semver.Compare(current, latest) >= 0 {
		return nil, nil
	}

	return &Result{Current: current, Latest: latest}, nil
}

func (c *Checker) latest(ctx context.Context) (ReleaseInfo, error) {
	if cached, err := c.cache.Get(ctx, cacheKey); err == nil && c.now().Sub(cached.FetchedAt) < cacheTTL {
		return cached, nil
	}

	info, err := c.fetch(ctx)
	if err != nil {
		return ReleaseInfo{}, err
	}

	info.FetchedAt = c.now()
	if err := c.cache.Set(ctx, cacheKey, info); err != nil {
		c.logger.Debug().Err(err).Msg("failed to cache release")
	}

	return info, nil
}

func (c *Checker) fetch(ctx context.Context) (ReleaseInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return ReleaseInfo{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "herald-update-checker")

	resp, err := c.client.Do(req)
	if err != nil {
		return ReleaseInfo{}, fmt.Errorf("request latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return ReleaseInfo{}, fmt.Errorf("request latest release: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ReleaseInfo{}, fmt.Errorf("read latest release body: %w", err)
	}

	var info ReleaseInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return ReleaseInfo{}, fmt.Errorf("decode latest release: %w", err)
	}
	if info.TagName == "" {
		return ReleaseInfo{}, fmt.Errorf("decode latest release: missing tag_name")
	}

	return info, nil
}

func normalizeVersion(version string) (string, bool) {
	if semver.IsValid(version) {
		return version, true
	}

	withPrefix := "v" + version
	if semver.IsValid(withPrefix) {
		return withPrefix, true
	}

	return "", false
}
