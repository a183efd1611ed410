// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// UserID validates a backend user id is non-empty after trimming whitespace.
func UserID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

// HTTPURL validates an absolute http(s) URL. Empty values are allowed.
func HTTPURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("url must include a host")
	}
	return nil
}

// Path validates an absolute URL path such as "/firebase-messaging-sw.js".
func Path(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("path must start with /")
	}
	return nil
}

// MutePattern validates a doublestar pattern.
func MutePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	return nil
}

// UserIDField returns a criterio validator for user ids.
func UserIDField(field, id string) error {
	return criterio.Run(field, id, UserID)
}

// HTTPURLField returns a criterio validator for http(s) URLs.
func HTTPURLField(field, raw string) error {
	return criterio.Run(field, raw, HTTPURL)
}
