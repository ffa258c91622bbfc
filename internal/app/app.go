// Package app is the top-level controller: it owns the page state
// machine, the current user, the category cache and the four managers,
// and dispatches user commands to them.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/kmanzi/marketclient/internal/admin"
	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/auth"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/notifications"
	"github.com/kmanzi/marketclient/internal/products"
	"github.com/kmanzi/marketclient/internal/ui"
	"github.com/kmanzi/marketclient/internal/validate"
	"go.uber.org/zap"
)

// Page names one UI page. Exactly one page is active at a time.
type Page string

const (
	PageHome          Page = "home"
	PageProducts      Page = "products"
	PageMyProducts    Page = "my-products"
	PageNotifications Page = "notifications"
	PageAdmin         Page = "admin"
	PageAbout         Page = "about"
	PageContact       Page = "contact"
)

var knownPages = map[Page]bool{
	PageHome:          true,
	PageProducts:      true,
	PageMyProducts:    true,
	PageNotifications: true,
	PageAdmin:         true,
	PageAbout:         true,
	PageContact:       true,
}

// searchQuiet is the debounce quiet period for search input.
const searchQuiet = 500 * time.Millisecond

// State is the cross-cutting UI state. Nothing else in the application
// holds a current user or current page.
type State struct {
	User       *models.User
	Page       Page
	Categories []models.Category
}

// View is the slice of the renderer the controller needs.
type View interface {
	Toast(kind ui.ToastKind, message string)
	Heading(title string)
	UserBar(u *models.User)
	Categories(categories []models.Category)
	ProductDetail(p models.Product, index int)
	Prompt(label string) (string, bool)
}

// App wires the managers together and runs the command loop.
type App struct {
	api           *api.Client
	auth          *auth.Manager
	products      *products.Manager
	admin         *admin.Manager
	notifications *notifications.Manager
	view          View
	log           *zap.Logger

	state          State
	searchDebounce *Debouncer
}

// New constructs the controller and registers the forced-logout hook so
// a 401 from any call drops the user and navigates home without an extra
// toast.
func New(
	apiClient *api.Client,
	authMgr *auth.Manager,
	productsMgr *products.Manager,
	adminMgr *admin.Manager,
	notificationsMgr *notifications.Manager,
	view View,
	log *zap.Logger,
) *App {
	a := &App{
		api:            apiClient,
		auth:           authMgr,
		products:       productsMgr,
		admin:          adminMgr,
		notifications:  notificationsMgr,
		view:           view,
		log:            log,
		state:          State{Page: PageHome},
		searchDebounce: NewDebouncer(searchQuiet),
	}
	apiClient.OnAuthLost(func() {
		a.state.User = nil
		a.state.Page = PageHome
		a.view.UserBar(nil)
	})
	return a
}

// CurrentUser reports the signed-in user, nil when anonymous.
func (a *App) CurrentUser() *models.User { return a.state.User }

// CurrentPage reports the active page.
func (a *App) CurrentPage() Page { return a.state.Page }

// Categories reports the cached category list.
func (a *App) Categories() []models.Category { return a.state.Categories }

// SetUser replaces the current user and re-renders the identity bar.
func (a *App) SetUser(u *models.User) {
	a.state.User = u
	a.view.UserBar(u)
}

// Boot restores the persisted session and renders the initial page.
func (a *App) Boot(ctx context.Context) {
	user, err := a.auth.Restore(ctx)
	if err != nil {
		a.log.Warn("session restore failed", zap.Error(err))
	}
	a.SetUser(user)
	a.ShowPage(ctx, PageHome)
	if user != nil {
		a.notifications.RefreshBadge(ctx)
	}
}

// ShowPage activates page, enforcing guards and running the page's entry
// load. Unknown pages fall back to home. my-products and notifications
// require a session; admin requires is_admin — guard failures toast and
// redirect home.
func (a *App) ShowPage(ctx context.Context, page Page) {
	if !knownPages[page] {
		a.log.Warn("unknown page requested", zap.String("page", string(page)))
		page = PageHome
	}

	switch page {
	case PageMyProducts:
		if a.state.User == nil {
			a.view.Toast(ui.ToastWarning, "Please login to view your products")
			a.ShowPage(ctx, PageHome)
			return
		}
	case PageNotifications:
		if a.state.User == nil {
			a.view.Toast(ui.ToastWarning, "Please login to view notifications")
			a.ShowPage(ctx, PageHome)
			return
		}
	case PageAdmin:
		if a.state.User == nil || !a.state.User.IsAdmin {
			a.view.Toast(ui.ToastError, "Admin access required")
			a.ShowPage(ctx, PageHome)
			return
		}
	}

	a.state.Page = page
	a.loadPageContent(ctx, page)
}

func (a *App) loadPageContent(ctx context.Context, page Page) {
	switch page {
	case PageHome:
		a.view.Heading("MarketPlace")
		a.view.UserBar(a.state.User)
		a.products.LoadFeatured(ctx)
	case PageProducts:
		a.loadCategories(ctx)
		if err := a.products.LoadAll(ctx, true); err != nil {
			a.log.Warn("failed to load products page", zap.Error(err))
		}
	case PageMyProducts:
		a.view.Heading("My Products")
		if err := a.products.LoadMine(ctx); err != nil {
			a.log.Warn("failed to load my-products page", zap.Error(err))
		}
	case PageNotifications:
		a.view.Heading("Notifications")
		a.notifications.Load(ctx)
	case PageAdmin:
		a.view.Heading("Admin Dashboard")
		a.admin.LoadDashboard(ctx)
	case PageAbout:
		a.view.Heading("About")
	case PageContact:
		a.view.Heading("Contact")
	}
}

// loadCategories refreshes the category cache for the lifetime of the
// current page view. Failures keep the stale cache and are only logged.
func (a *App) loadCategories(ctx context.Context) {
	var list models.CategoryList
	if err := a.api.Call(ctx, http.MethodGet, "/categories/", nil, &list); err != nil {
		a.log.Warn("failed to load categories", zap.Error(err))
		return
	}
	a.state.Categories = list.Categories
	a.view.Categories(list.Categories)
}

// Search applies a search term immediately: an empty term returns home,
// anything else switches to the products page with the term active.
func (a *App) Search(ctx context.Context, term string) {
	a.products.SetQuery(term)
	if a.products.Query() == "" {
		a.ShowPage(ctx, PageHome)
		return
	}
	a.ShowPage(ctx, PageProducts)
}

// QueueSearch schedules Search after the debounce quiet period; a newer
// queued term cancels any pending one. In-flight requests are never
// cancelled.
func (a *App) QueueSearch(ctx context.Context, term string) {
	a.searchDebounce.Trigger(func() {
		a.Search(ctx, term)
	})
}

// ClearSearch drops the search term; clearing while browsing products
// returns home.
func (a *App) ClearSearch(ctx context.Context) {
	a.products.SetQuery("")
	if a.state.Page == PageProducts {
		a.ShowPage(ctx, PageHome)
	}
}

// Login runs the login flow and, on success, refreshes the identity bar
// and the notification badge.
func (a *App) Login(ctx context.Context, email, password string) {
	user, err := a.auth.Login(ctx, email, password)
	if err != nil || user == nil {
		return
	}
	a.SetUser(user)
	a.notifications.RefreshBadge(ctx)
}

// Register runs the registration flow, entering the authenticated state
// on success.
func (a *App) Register(ctx context.Context, username, email, password string) {
	user, err := a.auth.Register(ctx, username, email, password)
	if err != nil || user == nil {
		return
	}
	a.SetUser(user)
	a.notifications.RefreshBadge(ctx)
}

// Logout returns to anonymous and navigates home.
func (a *App) Logout(ctx context.Context) {
	a.auth.Logout()
	a.SetUser(nil)
	a.ShowPage(ctx, PageHome)
}

// RefreshCurrentView reloads whichever product view the user is on,
// called after a create, edit or delete.
func (a *App) RefreshCurrentView(ctx context.Context) {
	switch a.state.Page {
	case PageMyProducts:
		_ = a.products.LoadMine(ctx)
	case PageProducts:
		_ = a.products.LoadAll(ctx, true)
	case PageHome:
		a.products.LoadFeatured(ctx)
	}
}

// SendContactMessage validates and submits the contact form. All four
// fields are required before anything is sent.
func (a *App) SendContactMessage(ctx context.Context, msg models.ContactMessage) error {
	if !validate.Required(msg.Name, msg.Email, msg.Subject, msg.Message) {
		a.view.Toast(ui.ToastError, "Please fill in all fields")
		return validate.ErrInvalid
	}
	if err := a.api.Call(ctx, http.MethodPost, "/contact/send-message", msg, nil); err != nil {
		a.log.Warn("failed to send contact message", zap.Error(err))
		return err
	}
	a.view.Toast(ui.ToastSuccess, "Thank you! Your message has been sent successfully.")
	return nil
}
