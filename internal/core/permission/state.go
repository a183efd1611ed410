// Package permission negotiates notification permission with the host
// environment.
package permission

import (
	"errors"
	"fmt"
	"strings"
)

// State is the host notification permission.
type State string

const (
	// Unsupported means the host cannot display notifications or run a
	// background handler. It is terminal and disables the subsystem.
	Unsupported State = "unsupported"
	Default     State = "default"
	Granted     State = "granted"
	Denied      State = "denied"
)

var (
	ErrPermissionUnavailable = errors.New("notifications are not supported")
	ErrPermissionDenied      = errors.New("notifications are blocked")
)

// ParseState parses a stored or user-supplied state. Matching is case-insensitive.
func ParseState(s string) (State, error) {
	switch st := State(strings.ToLower(strings.TrimSpace(s))); st {
	case Unsupported, Default, Granted, Denied:
		return st, nil
	default:
		return "", fmt.Errorf("invalid permission state %q", s)
	}
}

// Err returns nil when notifications may be shown, otherwise the sentinel
// describing why not.
func (s State) Err() error {
	switch s {
	case Granted:
		return nil
	case Unsupported:
		return ErrPermissionUnavailable
	case Default:
		return fmt.Errorf("%w: permission has not been requested", ErrPermissionDenied)
	default:
		return ErrPermissionDenied
	}
}

// StatusMessage is the inline status line shown for the state.
func (s State) StatusMessage() string {
	switch s {
	case Granted:
		return "notifications are enabled"
	case Denied:
		return "notifications are blocked"
	case Default:
		return "notifications are not enabled yet"
	default:
		return "notifications are not supported here"
	}
}

func (s State) String() string { return string(s) }
