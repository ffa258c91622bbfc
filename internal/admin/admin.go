// Package admin drives the dashboard: aggregate stats, user and product
// moderation, category management and broadcast notifications. Every
// entry point assumes the caller has already enforced the is_admin gate.
package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/ui"
	"github.com/kmanzi/marketclient/internal/validate"
	"go.uber.org/zap"
)

// Tab identifies one dashboard tab; exactly one is active at a time and
// its content loads lazily on activation.
type Tab string

const (
	TabUsers      Tab = "users"
	TabProducts   Tab = "products-admin"
	TabCategories Tab = "categories"
	TabBroadcast  Tab = "broadcast"
)

// View is the slice of the renderer the admin flows need.
type View interface {
	Toast(kind ui.ToastKind, message string)
	StartLoading()
	StopLoading()
	Stats(s models.Stats)
	Users(users []models.User)
	AdminProducts(products []models.Product)
	Categories(categories []models.Category)
	EmptyState(title, hint string)
	ErrorPanel(title, hint string)
}

// Manager drives the admin dashboard.
type Manager struct {
	api     *api.Client
	view    View
	confirm ui.Confirmer
	log     *zap.Logger

	activeTab Tab
}

// New returns an admin Manager with no tab active yet.
func New(apiClient *api.Client, view View, confirm ui.Confirmer, log *zap.Logger) *Manager {
	return &Manager{api: apiClient, view: view, confirm: confirm, log: log}
}

// ActiveTab reports the currently active tab.
func (m *Manager) ActiveTab() Tab { return m.activeTab }

// LoadDashboard renders the stat cards and activates the users tab, the
// dashboard's landing state.
func (m *Manager) LoadDashboard(ctx context.Context) {
	m.LoadStats(ctx)
	m.SwitchTab(ctx, TabUsers)
}

// LoadStats fetches the aggregate counts. A failure renders a distinct
// error panel in place of the cards and does not propagate.
func (m *Manager) LoadStats(ctx context.Context) {
	var resp models.StatsResponse
	if err := m.api.Call(ctx, http.MethodGet, "/admin/dashboard/stats", nil, &resp); err != nil {
		m.log.Warn("failed to load admin stats", zap.Error(err))
		m.view.ErrorPanel("Failed to load statistics", "Please check your connection and try again")
		return
	}
	m.view.Stats(resp.Stats)
}

// SwitchTab activates tab and loads its content. Content is loaded on
// activation, never eagerly for inactive tabs.
func (m *Manager) SwitchTab(ctx context.Context, tab Tab) {
	m.activeTab = tab
	switch tab {
	case TabUsers:
		m.LoadUsers(ctx)
	case TabProducts:
		m.LoadProducts(ctx)
	case TabCategories:
		m.LoadCategories(ctx)
	case TabBroadcast:
		// The broadcast tab is a bare form; nothing to fetch.
	}
}

// LoadUsers fetches and renders the user moderation list.
func (m *Manager) LoadUsers(ctx context.Context) {
	var list models.UserList
	if err := m.api.Call(ctx, http.MethodGet, "/admin/users", nil, &list); err != nil {
		m.log.Warn("failed to load users", zap.Error(err))
		m.view.ErrorPanel("Failed to load users", "Please check your connection and try again")
		return
	}
	if len(list.Users) == 0 {
		m.view.EmptyState("No users found", "There are no registered users yet")
		return
	}
	m.view.Users(list.Users)
}

// ToggleUser flips a user's active flag and refreshes the list.
func (m *Manager) ToggleUser(ctx context.Context, id int64) error {
	m.view.StartLoading()
	defer m.view.StopLoading()

	if err := m.api.Call(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d/toggle-active", id), nil, nil); err != nil {
		m.log.Warn("failed to toggle user", zap.Int64("user_id", id), zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "User status updated successfully!")
	m.LoadUsers(ctx)
	return nil
}

// DeleteUser permanently removes a user and their products, after
// confirmation, then refreshes the list.
func (m *Manager) DeleteUser(ctx context.Context, id int64, username string) error {
	prompt := fmt.Sprintf("Permanently delete user %q? This will also delete all their products and cannot be undone.", username)
	if !m.confirm.Confirm(prompt) {
		return nil
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	if err := m.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil, nil); err != nil {
		m.log.Warn("failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		if !api.IsAuth(err) {
			m.view.Toast(ui.ToastError, "Failed to delete user")
		}
		return err
	}
	m.view.Toast(ui.ToastSuccess, "User deleted successfully!")
	m.LoadUsers(ctx)
	return nil
}

// LoadProducts fetches and renders the product moderation list.
func (m *Manager) LoadProducts(ctx context.Context) {
	var list models.ProductList
	if err := m.api.Call(ctx, http.MethodGet, "/admin/products", nil, &list); err != nil {
		m.log.Warn("failed to load admin products", zap.Error(err))
		m.view.ErrorPanel("Failed to load products", "Please check your connection and try again")
		return
	}
	if len(list.Products) == 0 {
		m.view.EmptyState("No products found", "There are no products in the system yet")
		return
	}
	m.view.AdminProducts(list.Products)
}

// ToggleProduct flips a product's active flag and refreshes the list.
func (m *Manager) ToggleProduct(ctx context.Context, id int64) error {
	m.view.StartLoading()
	defer m.view.StopLoading()

	if err := m.api.Call(ctx, http.MethodPut, fmt.Sprintf("/admin/products/%d/toggle-active", id), nil, nil); err != nil {
		m.log.Warn("failed to toggle product", zap.Int64("product_id", id), zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Product status updated successfully!")
	m.LoadProducts(ctx)
	return nil
}

// DeleteProduct permanently removes any product, after confirmation, then
// refreshes the list.
func (m *Manager) DeleteProduct(ctx context.Context, id int64, name string) error {
	prompt := fmt.Sprintf("Permanently delete %q? This cannot be undone and all images will be deleted.", name)
	if !m.confirm.Confirm(prompt) {
		return nil
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	if err := m.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/admin/products/%d", id), nil, nil); err != nil {
		m.log.Warn("failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		if !api.IsAuth(err) {
			m.view.Toast(ui.ToastError, "Failed to delete product")
		}
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Product permanently deleted!")
	m.LoadProducts(ctx)
	return nil
}

// LoadCategories fetches and renders the category management list.
func (m *Manager) LoadCategories(ctx context.Context) {
	var list models.CategoryList
	if err := m.api.Call(ctx, http.MethodGet, "/categories/", nil, &list); err != nil {
		m.log.Warn("failed to load categories", zap.Error(err))
		m.view.ErrorPanel("Failed to load categories", "Please check your connection and try again")
		return
	}
	if len(list.Categories) == 0 {
		m.view.EmptyState("No categories yet", "Start by adding your first category")
		return
	}
	m.view.Categories(list.Categories)
}

// AddCategory creates a category. Name is required; description is not.
func (m *Manager) AddCategory(ctx context.Context, name, description string) error {
	if !validate.Required(name) {
		m.view.Toast(ui.ToastError, "Please enter a category name")
		return validate.ErrInvalid
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	body := map[string]string{"name": name, "description": description}
	if err := m.api.Call(ctx, http.MethodPost, "/admin/categories", body, nil); err != nil {
		m.log.Warn("failed to add category", zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Category added successfully!")
	m.LoadCategories(ctx)
	return nil
}

// DeleteCategory removes a category after confirmation and refreshes the
// list.
func (m *Manager) DeleteCategory(ctx context.Context, id int64) error {
	if !m.confirm.Confirm("Delete this category? This cannot be undone.") {
		return nil
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	if err := m.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", id), nil, nil); err != nil {
		m.log.Warn("failed to delete category", zap.Int64("category_id", id), zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Category deleted successfully!")
	m.LoadCategories(ctx)
	return nil
}

// Broadcast fans one notification out to every registered user. The
// message is required; there is no recipient targeting.
func (m *Manager) Broadcast(ctx context.Context, message string) error {
	if !validate.Required(message) {
		m.view.Toast(ui.ToastError, "Please enter a message")
		return validate.ErrInvalid
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	body := map[string]string{"message": message}
	if err := m.api.Call(ctx, http.MethodPost, "/notifications/broadcast", body, nil); err != nil {
		m.log.Warn("failed to send broadcast", zap.Error(err))
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Notification sent to all users!")
	return nil
}
