// Package auth owns the bearer-token lifecycle: login, registration,
// logout and session restore on startup.
package auth

import (
	"context"
	"net/http"

	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/session"
	"github.com/kmanzi/marketclient/internal/ui"
	"github.com/kmanzi/marketclient/internal/validate"
	"go.uber.org/zap"
)

// View is the slice of the renderer the auth flows need.
type View interface {
	Toast(kind ui.ToastKind, message string)
	StartLoading()
	StopLoading()
}

// Manager drives the anonymous/authenticated transitions.
type Manager struct {
	api     *api.Client
	session *session.Store
	view    View
	log     *zap.Logger
}

// New returns an auth Manager.
func New(apiClient *api.Client, store *session.Store, view View, log *zap.Logger) *Manager {
	return &Manager{api: apiClient, session: store, view: view, log: log}
}

// Login signs the user in. Both fields are required client-side; nothing
// is sent until they pass. On success the token is persisted and the
// signed-in user returned.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	if !validate.Required(email, password) {
		m.view.Toast(ui.ToastError, "Please fill in all fields")
		return nil, validate.ErrInvalid
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	var resp models.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := m.api.Call(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		m.log.Warn("login failed", zap.Error(err))
		return nil, err
	}
	if err := m.session.SetToken(resp.Token); err != nil {
		m.log.Error("failed to persist token", zap.Error(err))
	}
	m.view.Toast(ui.ToastSuccess, "Login successful! Welcome back!")
	return &resp.User, nil
}

// Register creates an account and signs the user in. The password length
// rule is enforced before the backend is called.
func (m *Manager) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if !validate.Required(username, email, password) {
		m.view.Toast(ui.ToastError, "Please fill in all fields")
		return nil, validate.ErrInvalid
	}
	if !validate.Email(email) {
		m.view.Toast(ui.ToastError, "Invalid email format")
		return nil, validate.ErrInvalid
	}
	if !validate.Password(password) {
		m.view.Toast(ui.ToastError, "Password must be at least 6 characters")
		return nil, validate.ErrInvalid
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	var resp models.AuthResponse
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := m.api.Call(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		m.log.Warn("registration failed", zap.Error(err))
		return nil, err
	}
	if err := m.session.SetToken(resp.Token); err != nil {
		m.log.Error("failed to persist token", zap.Error(err))
	}
	m.view.Toast(ui.ToastSuccess, "Registration successful! Welcome to MarketPlace!")
	return &resp.User, nil
}

// Restore re-enters the authenticated state from a persisted token. A
// missing or already-expired token yields an anonymous session without a
// network call; any failure from the who-am-I endpoint forces a clean
// logout.
func (m *Manager) Restore(ctx context.Context) (*models.User, error) {
	if m.session.Token() == "" {
		return nil, nil
	}
	if m.session.Expired() {
		m.log.Info("stored token expired, dropping session")
		_ = m.session.Clear()
		return nil, nil
	}

	var resp models.UserResponse
	if err := m.api.Call(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		m.log.Warn("session restore failed", zap.Error(err))
		_ = m.session.Clear()
		return nil, err
	}
	return &resp.User, nil
}

// Logout drops the token and returns the session to anonymous.
func (m *Manager) Logout() {
	if err := m.session.Clear(); err != nil {
		m.log.Error("failed to clear session", zap.Error(err))
	}
	m.view.Toast(ui.ToastSuccess, "Logged out successfully")
}
