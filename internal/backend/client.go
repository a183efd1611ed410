// Package backend is the REST client for the device registry and the
// notification history hosted by the application backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/push"
)

const defaultTimeout = 10 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to the backend with bearer authentication.
type Client struct {
	base   *url.URL
	token  string
	http   *http.Client
	logger zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a client for baseURL. authToken may be empty.
func New(baseURL, authToken string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse backend url: %q is not absolute", baseURL)
	}

	c := &Client{
		base:   u,
		token:  authToken,
		http:   &http.Client{Timeout: defaultTimeout},
		logger: logging.Component("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ push.Backend = (*Client)(nil)

type registerBody struct {
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	AppVersion string `json:"appVersion"`
	Platform   string `json:"platform"`
}

type unregisterBody struct {
	Token    string `json:"token"`
	DeviceID string `json:"deviceId"`
}

// RegisterDevice records the device's delivery token for userID.
func (c *Client) RegisterDevice(ctx context.Context, userID string, req push.RegisterRequest) error {
	body := registerBody{
		Token:      req.Token,
		DeviceType: req.DeviceType,
		DeviceID:   req.DeviceID,
		DeviceName: req.DeviceName,
		AppVersion: req.AppVersion,
		Platform:   req.Platform,
	}
	return c.do(ctx, http.MethodPost, "/devices/register", userQuery(userID), body, nil)
}

// UnregisterDevice removes the device's delivery token for userID.
func (c *Client) UnregisterDevice(ctx context.Context, userID string, req push.UnregisterRequest) error {
	body := unregisterBody{Token: req.Token, DeviceID: req.DeviceID}
	return c.do(ctx, http.MethodPost, "/devices/unregister", userQuery(userID), body, nil)
}

func userQuery(userID string) url.Values {
	return url.Values{"userId": {userID}}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("close response body")
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.logger.Debug().Ctx(ctx).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
