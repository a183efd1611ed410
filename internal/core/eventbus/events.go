// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within herald.
package eventbus

import (
	"time"

	"github.com/colonyops/herald/internal/core/notify"
	"github.com/colonyops/herald/internal/core/permission"
)

// Event identifies an event type.
type Event string

const (
	// Keep list sorted A-Z
	EventDeviceRegistered         Event = "device.registered"
	EventDeviceRegistrationFailed Event = "device.registration-failed"
	EventNotificationClicked      Event = "notification.clicked"
	EventNotificationReceived     Event = "notification.received"
	EventPermissionChanged        Event = "permission.changed"
	EventStatusReported           Event = "status.reported"
	EventTokenAcquired            Event = "token.acquired"
)

// PermissionChangedPayload is emitted when the observed permission changes.
// Old is empty for the first observation.
type PermissionChangedPayload struct {
	Old permission.State
	New permission.State
}

// TokenAcquiredPayload is emitted when a delivery token is resolved. Stale
// is true when the token came from durable storage after the delivery
// service failed.
type TokenAcquiredPayload struct {
	Stale bool
}

// DeviceRegisteredPayload is emitted after a successful registration.
type DeviceRegisteredPayload struct {
	UserID       string
	DeviceID     string
	RegisteredAt time.Time
}

// DeviceRegistrationFailedPayload is emitted when registration fails.
type DeviceRegistrationFailedPayload struct {
	UserID string
	Err    error
}

// NotificationReceivedPayload is emitted when a message is taken in.
type NotificationReceivedPayload struct {
	Record notify.Record
	// Displayed reports whether a native notification was requested.
	Displayed bool
}

// NotificationClickedPayload is emitted when a native notification is clicked.
type NotificationClickedPayload struct {
	Tag    string
	Action string
	URL    string
}

// StatusLevel is the severity of a status line.
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
)

// StatusReportedPayload carries a user-facing status line.
type StatusReportedPayload struct {
	Level   StatusLevel
	Message string
}
