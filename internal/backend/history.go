package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/colonyops/herald/internal/core/notify"
)

// NotificationID is a history entry id. Backends send it either as a
// string or as a number.
type NotificationID string

func (id *NotificationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NotificationID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("notification id: %w", err)
	}
	*id = NotificationID(n.String())
	return nil
}

// Notification is a history entry as stored by the backend.
type Notification struct {
	ID        NotificationID `json:"id"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	URL       string         `json:"url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
}

// Record converts the history entry into a local record.
func (n Notification) Record() notify.Record {
	r := notify.Record{
		ID:        string(n.ID),
		Title:     n.Title,
		Body:      n.Message,
		URL:       n.URL,
		Tag:       string(n.ID),
		Data:      n.Metadata,
		Timestamp: n.CreatedAt,
		Read:      n.IsRead,
	}
	if r.URL == "" {
		if u, ok := n.Metadata["url"].(string); ok {
			r.URL = u
		}
	}
	if r.Title == "" {
		r.Title = notify.DefaultTitle
	}
	if r.Body == "" {
		r.Body = notify.DefaultBody
	}
	return r
}

// historyList accepts both a bare array and a {"data": [...]} envelope.
type historyList []Notification

func (h *historyList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []Notification
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*h = items
		return nil
	}

	var env struct {
		Data []Notification `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*h = env.Data
	return nil
}

// ListNotifications returns the user's notification history.
func (c *Client) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	var out historyList
	if err := c.do(ctx, http.MethodGet, "/notifications/user/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead marks a single notification read.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

// MarkAllRead marks every notification of userID read.
func (c *Client) MarkAllRead(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPatch, "/notifications/user/"+url.PathEscape(userID)+"/read-all", nil, nil, nil)
}

// DeleteNotification removes a notification from the history.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notifications/"+url.PathEscape(id), nil, nil, nil)
}
