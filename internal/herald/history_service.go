package herald

import (
	"context"
	"fmt"
	"net/http"

	"github.com/colonyops/herald/internal/backend"
	"github.com/colonyops/herald/internal/core/notify"
)

// HistoryClient is the backend's notification history API.
type HistoryClient interface {
	ListNotifications(ctx context.Context, userID string) ([]backend.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id string) error
}

// HistoryService keeps the local store and the backend history in step.
// Local records (ids from notify.LocalID) exist only on this device and are
// never sent to the backend.
type HistoryService struct {
	client HistoryClient
	store  *notify.Store
	userID string
}

// NewHistoryService creates a history service.
func NewHistoryService(client HistoryClient, store *notify.Store, userID string) *HistoryService {
	return &HistoryService{client: client, store: store, userID: userID}
}

// Load fetches the history and adds every entry to the store, oldest first
// so the newest ends up on top.
func (h *HistoryService) Load(ctx context.Context) (int, error) {
	if h.userID == "" {
		return 0, fmt.Errorf("load history: user id is required")
	}
	items, err := h.client.ListNotifications(ctx, h.userID)
	if err != nil {
		return 0, fmt.Errorf("load history: %w", err)
	}
	for i := len(items) - 1; i >= 0; i-- {
		h.store.Add(items[i].Record())
	}
	return len(items), nil
}

// MarkRead marks a record read locally and, for backend records, remotely.
func (h *HistoryService) MarkRead(ctx context.Context, id string) error {
	h.store.MarkRead(id)
	if notify.IsLocalID(id) {
		return nil
	}
	return ignoreNotFound(h.client.MarkRead(ctx, id))
}

// MarkAllRead marks everything read locally and remotely.
func (h *HistoryService) MarkAllRead(ctx context.Context) error {
	h.store.MarkAllRead()
	if h.userID == "" {
		return nil
	}
	return h.client.MarkAllRead(ctx, h.userID)
}

// Delete removes a record locally and, for backend records, remotely.
func (h *HistoryService) Delete(ctx context.Context, id string) error {
	h.store.Remove(id)
	if notify.IsLocalID(id) {
		return nil
	}
	return ignoreNotFound(h.client.DeleteNotification(ctx, id))
}

// Pushed messages may carry delivery-service ids the backend never stored.
func ignoreNotFound(err error) error {
	if backend.IsStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}
