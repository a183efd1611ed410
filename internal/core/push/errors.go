package push

import "errors"

var (
	// ErrTokenUnavailable means no delivery token could be obtained, either
	// because permission is not granted or the delivery service failed and
	// no stored token exists.
	ErrTokenUnavailable = errors.New("delivery token unavailable")

	// ErrRegistrationFailed wraps backend errors returned while registering
	// or unregistering the device.
	ErrRegistrationFailed = errors.New("device registration failed")
)
