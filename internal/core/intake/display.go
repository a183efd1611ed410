// Package intake receives push messages in the foreground session and in
// the background worker, normalizes them and hands them to the store and
// the host's native notification display.
package intake

import (
	"context"
	"maps"

	"github.com/colonyops/herald/internal/core/notify"
)

// DisplayRequest asks the host to show a native notification. Tag is the
// record id so repeat deliveries of the same message coalesce.
type DisplayRequest struct {
	Title              string          `json:"title"`
	Body               string          `json:"body"`
	Icon               string          `json:"icon,omitempty"`
	Image              string          `json:"image,omitempty"`
	Tag                string          `json:"tag"`
	Data               map[string]any  `json:"data,omitempty"`
	RequireInteraction bool            `json:"requireInteraction,omitempty"`
	Actions            []notify.Action `json:"actions,omitempty"`
}

// DisplayRequestFor builds the display request for a record. The record URL
// travels in data.url so click handling can find it.
func DisplayRequestFor(r notify.Record) DisplayRequest {
	data := maps.Clone(r.Data)
	if r.URL != "" {
		if data == nil {
			data = make(map[string]any, 1)
		}
		data["url"] = r.URL
	}

	return DisplayRequest{
		Title:              r.Title,
		Body:               r.Body,
		Icon:               r.Icon,
		Image:              r.Image,
		Tag:                r.ID,
		Data:               data,
		RequireInteraction: r.RequireInteraction,
		Actions:            r.Actions,
	}
}

// URL returns the click target carried in the request data.
func (d DisplayRequest) URL() string {
	u, _ := d.Data["url"].(string)
	return u
}

// Displayer shows native notifications.
type Displayer interface {
	Display(ctx context.Context, req DisplayRequest) error
}

// Notifier is a Displayer that can also close a shown notification.
type Notifier interface {
	Displayer
	Close(ctx context.Context, tag string) error
}
