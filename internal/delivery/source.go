// Package delivery acquires push delivery tokens from the delivery service.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/push"
)

// Source implements push.TokenSource against `POST {url}/v1/tokens`.
type Source struct {
	url      string
	appID    string
	vapidKey string
	http     *http.Client
	logger   zerolog.Logger
}

// Config identifies the application to the delivery service.
type Config struct {
	URL      string
	AppID    string
	VAPIDKey string
	Timeout  time.Duration
}

// NewSource creates a token source.
func NewSource(cfg Config) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Source{
		url:      strings.TrimRight(cfg.URL, "/") + "/v1/tokens",
		appID:    cfg.AppID,
		vapidKey: cfg.VAPIDKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logging.Component("delivery"),
	}
}

var _ push.TokenSource = (*Source)(nil)

type tokenRequest struct {
	AppID    string `json:"appId"`
	DeviceID string `json:"deviceId"`
	VAPIDKey string `json:"vapidKey,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Acquire requests a delivery token for the device.
func (s *Source) Acquire(ctx context.Context, req push.TokenRequest) (string, error) {
	data, err := json.Marshal(tokenRequest{AppID: s.appID, DeviceID: req.DeviceID, VAPIDKey: s.vapidKey})
	if err != nil {
		return "", fmt.Errorf("encode token request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("close token response body")
		}
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("request token: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("read token body: %w", err)
	}

	var out tokenResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode token body: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("request token: %w", push.ErrTokenUnavailable)
	}
	return out.Token, nil
}
