// Package notifications lists the signed-in user's notifications and
// tracks the unread badge count.
package notifications

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/ui"
	"go.uber.org/zap"
)

// View is the slice of the renderer the notification flows need.
type View interface {
	Toast(kind ui.ToastKind, message string)
	Notifications(notifications []models.Notification)
	EmptyState(title, hint string)
	ErrorPanel(title, hint string)
	Badge(unread int)
}

// Manager drives the notification list and badge.
type Manager struct {
	api  *api.Client
	view View
	log  *zap.Logger
}

// New returns a notifications Manager.
func New(apiClient *api.Client, view View, log *zap.Logger) *Manager {
	return &Manager{api: apiClient, view: view, log: log}
}

// Load fetches and renders the notification list, newest first as the
// server orders it. Failures render the error panel in place of data.
func (m *Manager) Load(ctx context.Context) {
	list, err := m.fetch(ctx)
	if err != nil {
		m.log.Warn("failed to load notifications", zap.Error(err))
		m.view.ErrorPanel("Failed to load notifications", "Please check your connection and try again")
		return
	}
	if len(list.Notifications) == 0 {
		m.view.EmptyState("No notifications", "You're all caught up!")
		return
	}
	m.view.Notifications(list.Notifications)
}

// RefreshBadge re-fetches the unread count and renders the badge; the
// badge stays hidden at zero. Failures are logged, never shown.
func (m *Manager) RefreshBadge(ctx context.Context) {
	list, err := m.fetch(ctx)
	if err != nil {
		m.log.Debug("failed to refresh notification badge", zap.Error(err))
		return
	}
	m.view.Badge(list.UnreadCount)
}

// MarkRead marks one notification read, then refreshes the list and the
// badge. Marking an already-read notification is harmless.
func (m *Manager) MarkRead(ctx context.Context, id int64) error {
	if err := m.api.Call(ctx, http.MethodPut, fmt.Sprintf("/notifications/%d/read", id), nil, nil); err != nil {
		m.log.Warn("failed to mark notification read", zap.Int64("notification_id", id), zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Notification marked as read")
	m.Load(ctx)
	m.RefreshBadge(ctx)
	return nil
}

// MarkAllRead marks every notification read in one call, then refreshes
// the list and the badge.
func (m *Manager) MarkAllRead(ctx context.Context) error {
	if err := m.api.Call(ctx, http.MethodPut, "/notifications/read-all", nil, nil); err != nil {
		m.log.Warn("failed to mark all notifications read", zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "All notifications marked as read")
	m.Load(ctx)
	m.RefreshBadge(ctx)
	return nil
}

func (m *Manager) fetch(ctx context.Context) (*models.NotificationList, error) {
	var list models.NotificationList
	if err := m.api.Call(ctx, http.MethodGet, "/notifications/", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
