// Package notify holds the notification record model, the normalization of
// push payloads into records, and the in-memory notification store consumed
// by the presenter.
package notify

import "time"

// Placeholders used when a payload carries no title or body.
const (
	DefaultTitle = "New notification"
	DefaultBody  = "You have a new notification"
)

// ActionView is the action id that navigates to the record URL on click.
const ActionView = "view"

// Action is a button attached to a native notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Record is a single notification as seen by the UI.
type Record struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Body               string         `json:"body"`
	Icon               string         `json:"icon,omitempty"`
	Image              string         `json:"image,omitempty"`
	URL                string         `json:"url,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	RequireInteraction bool           `json:"requireInteraction,omitempty"`
	Actions            []Action       `json:"actions,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
	Timestamp          time.Time      `json:"timestamp"`
	Read               bool           `json:"read"`
}
