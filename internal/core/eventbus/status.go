package eventbus

import (
	"errors"
	"fmt"

	"github.com/colonyops/herald/internal/core/permission"
	"github.com/colonyops/herald/internal/core/push"
)

// StatusRouter maps domain events to user-facing status lines.
type StatusRouter struct {
	bus *EventBus
}

// NewStatusRouter constructs a router for event-to-status mappings.
func NewStatusRouter(bus *EventBus) *StatusRouter {
	return &StatusRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *StatusRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribePermissionChanged(func(p PermissionChangedPayload) {
		switch p.New {
		case permission.Denied:
			r.statusf(StatusWarning, "%s", p.New.StatusMessage())
		case permission.Unsupported:
			if p.Old != "" {
				r.statusf(StatusWarning, "%s", p.New.StatusMessage())
			}
		case permission.Granted:
			if p.Old != "" {
				r.statusf(StatusInfo, "%s", p.New.StatusMessage())
			}
		}
	})

	r.bus.SubscribeTokenAcquired(func(p TokenAcquiredPayload) {
		if p.Stale {
			r.statusf(StatusWarning, "delivery service unreachable, using stored token")
		}
	})

	r.bus.SubscribeDeviceRegistered(func(p DeviceRegisteredPayload) {
		r.statusf(StatusInfo, "device registered for user %s", p.UserID)
	})

	r.bus.SubscribeDeviceRegistrationFailed(func(p DeviceRegistrationFailedPayload) {
		if errors.Is(p.Err, push.ErrTokenUnavailable) {
			r.statusf(StatusWarning, "device not registered: no delivery token")
			return
		}
		r.statusf(StatusError, "device registration failed: %v", p.Err)
	})
}

func (r *StatusRouter) statusf(level StatusLevel, format string, args ...any) {
	r.bus.PublishStatusReported(StatusReportedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
