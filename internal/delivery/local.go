package delivery

import (
	"context"
	"fmt"

	"github.com/colonyops/herald/internal/core/push"
)

// LocalSource issues tokens without a delivery service. Tokens are derived
// from the device id so in-process publishers can address the device.
type LocalSource struct{}

var _ push.TokenSource = LocalSource{}

// Acquire returns "local-<deviceID>".
func (LocalSource) Acquire(_ context.Context, req push.TokenRequest) (string, error) {
	if req.DeviceID == "" {
		return "", push.ErrTokenUnavailable
	}
	return "local-" + req.DeviceID, nil
}

// Unconfigured stands in when no delivery service is configured. Every
// acquisition fails, so tokens only come from durable storage.
type Unconfigured struct{}

var _ push.TokenSource = Unconfigured{}

// Acquire always fails with push.ErrTokenUnavailable.
func (Unconfigured) Acquire(context.Context, push.TokenRequest) (string, error) {
	return "", fmt.Errorf("%w: no delivery service configured", push.ErrTokenUnavailable)
}
