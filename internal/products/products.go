// Package products drives the listing, detail, form and image-upload
// flows for marketplace listings.
package products

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/ui"
	"github.com/kmanzi/marketclient/internal/validate"
	"go.uber.org/zap"
)

// View is the slice of the renderer the product flows need.
type View interface {
	Toast(kind ui.ToastKind, message string)
	StartLoading()
	StopLoading()
	ProductCards(title string, products []models.Product)
	ProductTable(products []models.Product)
	EmptyState(title, hint string)
	ErrorPanel(title, hint string)
	StagedImages(previews []string)
}

// Manager owns the listing cursor, the active search filter and the
// form-scoped staged image sequence. All of it is mutated only on the
// caller's own stack; there is no background work here.
type Manager struct {
	api     *api.Client
	view    View
	confirm ui.Confirmer
	log     *zap.Logger

	pageSize     int
	featuredSize int

	page       int
	hasMore    bool
	query      string
	categoryID int64
	items      []models.Product

	staged []StagedImage
}

// New returns a products Manager with the listing cursor reset.
func New(apiClient *api.Client, view View, confirm ui.Confirmer, log *zap.Logger, pageSize, featuredSize int) *Manager {
	return &Manager{
		api:          apiClient,
		view:         view,
		confirm:      confirm,
		log:          log,
		pageSize:     pageSize,
		featuredSize: featuredSize,
		page:         1,
		hasMore:      true,
	}
}

// SetQuery replaces the active search term.
func (m *Manager) SetQuery(q string) { m.query = strings.TrimSpace(q) }

// Query reports the active search term.
func (m *Manager) Query() string { return m.query }

// SetCategoryFilter replaces the active category filter; zero clears it.
func (m *Manager) SetCategoryFilter(id int64) { m.categoryID = id }

// HasMore reports whether another page may exist.
func (m *Manager) HasMore() bool { return m.hasMore }

// Page reports the cursor of the next page to request.
func (m *Manager) Page() int { return m.page }

// Items reports the accumulated listing result set.
func (m *Manager) Items() []models.Product { return m.items }

// LoadAll fetches one page of the public listing. With reset the cursor
// returns to page 1 and the prior result set is cleared before rendering;
// without it the page is appended. Once hasMore is false the call is a
// no-op until the next reset. The cursor advances only when the response
// confirms more pages exist.
func (m *Manager) LoadAll(ctx context.Context, reset bool) error {
	if reset {
		m.page = 1
		m.hasMore = true
		m.items = nil
	}
	if !m.hasMore {
		return nil
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	q := url.Values{}
	q.Set("page", strconv.Itoa(m.page))
	q.Set("per_page", strconv.Itoa(m.pageSize))
	if m.query != "" {
		q.Set("search", m.query)
	}
	if m.categoryID != 0 {
		q.Set("category_id", strconv.FormatInt(m.categoryID, 10))
	}

	var page models.ProductPage
	if err := m.api.Call(ctx, http.MethodGet, "/products/?"+q.Encode(), nil, &page); err != nil {
		m.log.Warn("failed to load products", zap.Error(err))
		return err
	}

	if reset {
		m.items = page.Products
		if len(page.Products) == 0 {
			m.view.EmptyState("No products found", "Try adjusting your search criteria or check back later")
		} else {
			m.view.ProductCards("All Products", page.Products)
		}
	} else {
		m.items = append(m.items, page.Products...)
		m.view.ProductCards(fmt.Sprintf("More Products (page %d)", page.CurrentPage), page.Products)
	}

	m.hasMore = page.CurrentPage < page.Pages
	if m.hasMore {
		m.page++
	}
	return nil
}

// LoadFeatured fetches the short home-page listing. Failures render the
// error panel rather than propagating past the render.
func (m *Manager) LoadFeatured(ctx context.Context) {
	var page models.ProductPage
	endpoint := fmt.Sprintf("/products/?per_page=%d", m.featuredSize)
	if err := m.api.Call(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		m.log.Warn("failed to load featured products", zap.Error(err))
		m.view.ErrorPanel("Connection Issue", "Cannot load products. Please check your connection.")
		return
	}
	if len(page.Products) == 0 {
		m.view.EmptyState("No products found", "Try adjusting your search criteria or check back later")
		return
	}
	m.view.ProductCards("Featured Products", page.Products)
}

// LoadMine fetches and renders the signed-in user's own listings.
func (m *Manager) LoadMine(ctx context.Context) error {
	m.view.StartLoading()
	defer m.view.StopLoading()

	var list models.ProductList
	if err := m.api.Call(ctx, http.MethodGet, "/products/my-products", nil, &list); err != nil {
		m.log.Warn("failed to load own products", zap.Error(err))
		if !api.IsAuth(err) {
			m.view.Toast(ui.ToastError, "Failed to load your products")
		}
		return err
	}
	if len(list.Products) == 0 {
		m.view.EmptyState("No products yet", "Post your first product to see it here")
		return nil
	}
	m.view.ProductTable(list.Products)
	return nil
}

// Detail fetches a single product for the detail view.
func (m *Manager) Detail(ctx context.Context, id int64) (*models.Product, error) {
	m.view.StartLoading()
	defer m.view.StopLoading()

	var resp models.ProductResponse
	if err := m.api.Call(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &resp); err != nil {
		m.log.Warn("failed to load product details", zap.Int64("product_id", id), zap.Error(err))
		return nil, err
	}
	return &resp.Product, nil
}

// Form carries the product form fields. A non-zero ID means edit.
type Form struct {
	ID          int64
	Name        string
	CategoryID  int64
	Description string
	ContactInfo string
	Location    string
	Price       string
}

// LoadForEdit fetches a product and seeds the staged image sequence from
// its existing images, so the form opens pre-filled.
func (m *Manager) LoadForEdit(ctx context.Context, id int64) (*models.Product, error) {
	p, err := m.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	m.staged = stagedFromURLs(p.ImageURLs)
	m.view.StagedImages(m.Previews())
	return p, nil
}

// Submit validates the form and dispatches the create or edit request.
// Name, category, description, contact info, location and at least one
// staged image are required; price is optional and parsed as a float when
// present. On success the staged sequence is reset; refreshing the
// visible view is the caller's job.
func (m *Manager) Submit(ctx context.Context, form Form) error {
	if !validate.Required(form.Name, form.Description, form.ContactInfo, form.Location) || form.CategoryID == 0 {
		m.view.Toast(ui.ToastError, "Please fill in all required fields")
		return validate.ErrInvalid
	}
	if len(m.staged) == 0 {
		m.view.Toast(ui.ToastError, "Please upload at least one image for your product")
		return validate.ErrInvalid
	}

	input := models.ProductInput{
		Name:        form.Name,
		CategoryID:  form.CategoryID,
		Description: form.Description,
		ContactInfo: form.ContactInfo,
		Location:    form.Location,
		ImageURLs:   m.StagedURLs(),
	}
	if strings.TrimSpace(form.Price) != "" {
		price, err := strconv.ParseFloat(strings.TrimSpace(form.Price), 64)
		if err != nil {
			m.view.Toast(ui.ToastError, "Price must be a number")
			return validate.ErrInvalid
		}
		input.Price = &price
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	var err error
	if form.ID != 0 {
		err = m.api.Call(ctx, http.MethodPut, fmt.Sprintf("/products/%d", form.ID), input, nil)
	} else {
		err = m.api.Call(ctx, http.MethodPost, "/products/", input, nil)
	}
	if err != nil {
		m.log.Warn("failed to save product", zap.Error(err))
		return err
	}

	if form.ID != 0 {
		m.view.Toast(ui.ToastSuccess, "Product updated successfully!")
	} else {
		m.view.Toast(ui.ToastSuccess, "Product created successfully!")
	}
	m.ResetUpload()
	return nil
}

// Delete permanently removes a listing after interactive confirmation.
// Without confirmation no request is issued.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if !m.confirm.Confirm("Permanently delete this product? This cannot be undone and all images will be deleted.") {
		return nil
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	if err := m.api.Call(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil); err != nil {
		m.log.Warn("failed to delete product", zap.Int64("product_id", id), zap.Error(err))
		if !api.IsAuth(err) {
			m.view.Toast(ui.ToastError, "Failed to delete product")
		}
		return err
	}
	m.view.Toast(ui.ToastSuccess, "Product permanently deleted!")
	return nil
}
