package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmanzi/marketclient/internal/admin"
	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/auth"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/notifications"
	"github.com/kmanzi/marketclient/internal/products"
	"github.com/kmanzi/marketclient/internal/session"
	"github.com/kmanzi/marketclient/internal/ui"
)

type fakeNotifier struct{}

func (fakeNotifier) ConnectivityLost(string) {}

// fakeView satisfies every manager's view interface plus ui.Confirmer,
// the same shape *ui.Terminal presents to the wiring in main.
type fakeView struct {
	toasts     []string
	headings   []string
	userBars   []*models.User
	cardTitles []string
	badges     []int
	empties    []string
	panels     []string
	confirm    bool
}

func (f *fakeView) Toast(kind ui.ToastKind, message string) {
	f.toasts = append(f.toasts, string(kind)+": "+message)
}
func (f *fakeView) Heading(title string)                       { f.headings = append(f.headings, title) }
func (f *fakeView) UserBar(u *models.User)                     { f.userBars = append(f.userBars, u) }
func (f *fakeView) Categories(categories []models.Category)    {}
func (f *fakeView) ProductDetail(p models.Product, index int)  {}
func (f *fakeView) Prompt(label string) (string, bool)         { return "", false }
func (f *fakeView) StartLoading()                              {}
func (f *fakeView) StopLoading()                               {}
func (f *fakeView) ProductCards(title string, _ []models.Product) {
	f.cardTitles = append(f.cardTitles, title)
}
func (f *fakeView) ProductTable(products []models.Product)  {}
func (f *fakeView) EmptyState(title, hint string)           { f.empties = append(f.empties, title) }
func (f *fakeView) ErrorPanel(title, hint string)           { f.panels = append(f.panels, title) }
func (f *fakeView) StagedImages(previews []string)          {}
func (f *fakeView) Notifications(_ []models.Notification)   {}
func (f *fakeView) Badge(unread int)                        { f.badges = append(f.badges, unread) }
func (f *fakeView) Stats(s models.Stats)                    {}
func (f *fakeView) Users(users []models.User)               {}
func (f *fakeView) AdminProducts(products []models.Product) {}
func (f *fakeView) Confirm(prompt string) bool              { return f.confirm }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// backend is a minimal fake of the marketplace API, enough to boot the
// controller and walk the pages.
type backend struct {
	router         chi.Router
	productQueries []string
}

func newBackend() *backend {
	b := &backend{router: chi.NewRouter()}
	b.router.Get("/products/", func(w http.ResponseWriter, req *http.Request) {
		b.productQueries = append(b.productQueries, req.URL.RawQuery)
		writeJSON(w, models.ProductPage{
			Products:    []models.Product{{ID: 1, Name: "Phone", IsActive: true}},
			Total:       1,
			Pages:       1,
			CurrentPage: 1,
		})
	})
	b.router.Get("/categories/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, models.CategoryList{Categories: []models.Category{{ID: 1, Name: "Electronics"}}})
	})
	b.router.Get("/notifications/", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, models.NotificationList{UnreadCount: 2})
	})
	return b
}

func newTestApp(t *testing.T, b *backend) (*App, *fakeView, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(b.router)
	t.Cleanup(srv.Close)

	store, err := session.Load(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	view := &fakeView{confirm: true}
	log := zap.NewNop()
	client := api.New(srv.Client(), srv.URL, store, fakeNotifier{}, log)
	a := New(
		client,
		auth.New(client, store, view, log),
		products.New(client, view, view, log, 12, 6),
		admin.New(client, view, view, log),
		notifications.New(client, view, log),
		view,
		log,
	)
	return a, view, store
}

func TestBoot_AnonymousLandsOnHome(t *testing.T) {
	a, view, _ := newTestApp(t, newBackend())

	a.Boot(context.Background())

	assert.Nil(t, a.CurrentUser())
	assert.Equal(t, PageHome, a.CurrentPage())
	assert.Contains(t, view.headings, "MarketPlace")
	assert.Contains(t, view.cardTitles, "Featured Products")
	// no session, no badge fetch
	assert.Empty(t, view.badges)
}

func TestShowPage_UnknownFallsBackToHome(t *testing.T) {
	a, view, _ := newTestApp(t, newBackend())

	a.ShowPage(context.Background(), Page("profile"))

	assert.Equal(t, PageHome, a.CurrentPage())
	assert.Contains(t, view.headings, "MarketPlace")
}

func TestShowPage_GuardsAnonymousUsers(t *testing.T) {
	tests := []struct {
		page  Page
		toast string
	}{
		{PageMyProducts, "warning: Please login to view your products"},
		{PageNotifications, "warning: Please login to view notifications"},
		{PageAdmin, "error: Admin access required"},
	}
	for _, tt := range tests {
		t.Run(string(tt.page), func(t *testing.T) {
			a, view, _ := newTestApp(t, newBackend())

			a.ShowPage(context.Background(), tt.page)

			assert.Equal(t, PageHome, a.CurrentPage())
			assert.Contains(t, view.toasts, tt.toast)
		})
	}
}

func TestShowPage_AdminRequiresAdminFlag(t *testing.T) {
	a, view, _ := newTestApp(t, newBackend())
	a.SetUser(&models.User{ID: 1, Username: "alice"})

	a.ShowPage(context.Background(), PageAdmin)

	assert.Equal(t, PageHome, a.CurrentPage())
	assert.Contains(t, view.toasts, "error: Admin access required")
}

func TestShowPage_ProductsLoadsCategoriesAndListing(t *testing.T) {
	b := newBackend()
	a, _, _ := newTestApp(t, b)

	a.ShowPage(context.Background(), PageProducts)

	assert.Equal(t, PageProducts, a.CurrentPage())
	require.Len(t, b.productQueries, 1)
	assert.Contains(t, b.productQueries[0], "page=1")
	assert.Len(t, a.Categories(), 1)
}

func TestSearch_EmptyTermReturnsHome(t *testing.T) {
	a, _, _ := newTestApp(t, newBackend())

	a.Search(context.Background(), "   ")

	assert.Equal(t, PageHome, a.CurrentPage())
}

func TestSearch_TermSwitchesToProducts(t *testing.T) {
	b := newBackend()
	a, _, _ := newTestApp(t, b)

	a.Search(context.Background(), "laptop")

	assert.Equal(t, PageProducts, a.CurrentPage())
	require.Len(t, b.productQueries, 1)
	assert.Contains(t, b.productQueries[0], "search=laptop")
}

func TestClearSearch_OnProductsReturnsHome(t *testing.T) {
	a, _, _ := newTestApp(t, newBackend())
	a.Search(context.Background(), "laptop")

	a.ClearSearch(context.Background())

	assert.Equal(t, PageHome, a.CurrentPage())
}

func TestClearSearch_ElsewhereStaysPut(t *testing.T) {
	a, _, _ := newTestApp(t, newBackend())
	a.ShowPage(context.Background(), PageAbout)

	a.ClearSearch(context.Background())

	assert.Equal(t, PageAbout, a.CurrentPage())
}

func TestLogin_SetsUserAndRefreshesBadge(t *testing.T) {
	b := newBackend()
	b.router.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, models.AuthResponse{Token: "tok", User: models.User{ID: 1, Username: "alice"}})
	})
	a, view, store := newTestApp(t, b)

	a.Login(context.Background(), "alice@example.com", "secret1")

	require.NotNil(t, a.CurrentUser())
	assert.Equal(t, "alice", a.CurrentUser().Username)
	assert.Equal(t, "tok", store.Token())
	assert.Equal(t, []int{2}, view.badges)
}

func TestLogin_FailureLeavesAnonymous(t *testing.T) {
	b := newBackend()
	b.router.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]string{"message": "Invalid credentials"})
	})
	a, view, _ := newTestApp(t, b)

	a.Login(context.Background(), "alice@example.com", "wrong")

	assert.Nil(t, a.CurrentUser())
	assert.Empty(t, view.badges)
}

func TestLogout_ReturnsToAnonymousHome(t *testing.T) {
	a, view, store := newTestApp(t, newBackend())
	require.NoError(t, store.SetToken("tok"))
	a.SetUser(&models.User{ID: 1, Username: "alice"})

	a.Logout(context.Background())

	assert.Nil(t, a.CurrentUser())
	assert.Equal(t, PageHome, a.CurrentPage())
	assert.Empty(t, store.Token())
	assert.Contains(t, view.toasts, "success: Logged out successfully")
}

func TestUnauthorizedResponseDropsUserAndNavigatesHome(t *testing.T) {
	b := newBackend()
	b.router.Get("/products/my-products", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	a, view, store := newTestApp(t, b)
	require.NoError(t, store.SetToken("stale"))
	a.SetUser(&models.User{ID: 1, Username: "alice"})
	view.toasts = nil

	a.ShowPage(context.Background(), PageMyProducts)

	assert.Nil(t, a.CurrentUser())
	assert.Equal(t, PageHome, a.CurrentPage())
	assert.Empty(t, store.Token())
	// the session loss itself is silent; no extra error toast piles on
	assert.Empty(t, view.toasts)
	require.NotEmpty(t, view.userBars)
	assert.Nil(t, view.userBars[len(view.userBars)-1])
}

func TestRefreshCurrentView_ReloadsMyProducts(t *testing.T) {
	var mineCalls int
	b := newBackend()
	b.router.Get("/products/my-products", func(w http.ResponseWriter, req *http.Request) {
		mineCalls++
		writeJSON(w, models.ProductList{Products: []models.Product{{ID: 1, Name: "Phone"}}})
	})
	a, _, _ := newTestApp(t, b)
	a.SetUser(&models.User{ID: 1, Username: "alice"})
	a.ShowPage(context.Background(), PageMyProducts)

	a.RefreshCurrentView(context.Background())

	assert.Equal(t, 2, mineCalls)
}

func TestSendContactMessage_RejectsIncompleteFormWithoutRequest(t *testing.T) {
	var posts int
	b := newBackend()
	b.router.Post("/contact/send-message", func(w http.ResponseWriter, req *http.Request) { posts++ })
	a, view, _ := newTestApp(t, b)

	err := a.SendContactMessage(context.Background(), models.ContactMessage{
		Name: "Alice", Email: "a@example.com", Subject: "Hi",
	})

	assert.Error(t, err)
	assert.Zero(t, posts)
	require.Len(t, view.toasts, 1)
	assert.Contains(t, view.toasts[0], "fill in all fields")
}

func TestSendContactMessage_PostsForm(t *testing.T) {
	var got models.ContactMessage
	b := newBackend()
	b.router.Post("/contact/send-message", func(w http.ResponseWriter, req *http.Request) {
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		writeJSON(w, map[string]string{"message": "ok"})
	})
	a, view, _ := newTestApp(t, b)

	msg := models.ContactMessage{Name: "Alice", Email: "a@example.com", Subject: "Hi", Message: "Hello there"}
	require.NoError(t, a.SendContactMessage(context.Background(), msg))

	assert.Equal(t, msg, got)
	assert.Contains(t, view.toasts, "success: Thank you! Your message has been sent successfully.")
}
