package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kmanzi/marketclient/internal/models"
)

// Terminal renders pages and toasts to a writer and reads confirmations
// from a reader. It is the single concrete renderer; everything else in
// the application talks to interfaces it satisfies.
type Terminal struct {
	out io.Writer
	in  *bufio.Scanner
}

// NewTerminal returns a Terminal writing to out and reading from in.
func NewTerminal(out io.Writer, in io.Reader) *Terminal {
	return &Terminal{out: out, in: bufio.NewScanner(in)}
}

// Toast prints a transient message tagged with its kind.
func (t *Terminal) Toast(kind ToastKind, message string) {
	fmt.Fprintf(t.out, "[%s] %s\n", kind, message)
}

// ConnectivityLost prints the persistent variant of an error toast,
// suggesting a restart rather than auto-dismissing.
func (t *Terminal) ConnectivityLost(message string) {
	fmt.Fprintf(t.out, "[connectivity] %s Restart the client to retry discovery.\n", message)
}

// StartLoading marks the beginning of a network operation.
func (t *Terminal) StartLoading() {
	fmt.Fprintln(t.out, "loading...")
}

// StopLoading clears the loading marker.
func (t *Terminal) StopLoading() {}

// Prompt prints a label and reads one line of input. The second return
// is false once input is exhausted.
func (t *Terminal) Prompt(label string) (string, bool) {
	fmt.Fprint(t.out, label)
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

// Confirm prompts for an explicit yes before destructive actions.
func (t *Terminal) Confirm(prompt string) bool {
	fmt.Fprintf(t.out, "%s [y/N]: ", prompt)
	if !t.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(t.in.Text()))
	return answer == "y" || answer == "yes"
}

// UserBar renders the nav identity area: sign-in hints when anonymous,
// username plus admin marker otherwise.
func (t *Terminal) UserBar(u *models.User) {
	if u == nil {
		fmt.Fprintln(t.out, "Not signed in. Use 'login' or 'register'.")
		return
	}
	if u.IsAdmin {
		fmt.Fprintf(t.out, "Signed in as %s (admin)\n", u.Username)
		return
	}
	fmt.Fprintf(t.out, "Signed in as %s\n", u.Username)
}

// Badge renders the unread notification count, hidden when zero.
func (t *Terminal) Badge(unread int) {
	if unread == 0 {
		return
	}
	fmt.Fprintln(t.out, badgeText(unread))
}

// Heading prints a page title.
func (t *Terminal) Heading(title string) {
	fmt.Fprintf(t.out, "== %s ==\n", title)
}

// EmptyState renders the no-results panel, distinct from an error panel.
func (t *Terminal) EmptyState(title, hint string) {
	fmt.Fprintf(t.out, "-- %s --\n%s\n", title, hint)
}

// ErrorPanel renders a load-failure panel in place of data.
func (t *Terminal) ErrorPanel(title, hint string) {
	fmt.Fprintf(t.out, "!! %s !!\n%s\n", title, hint)
}

// ProductCards renders a product grid as compact cards.
func (t *Terminal) ProductCards(title string, products []models.Product) {
	t.Heading(title)
	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tPrice\tCategory\tLocation")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, Truncate(p.Name, 32), PriceLabel(p), CategoryLabel(p), p.Location)
	}
	_ = w.Flush()
}

// ProductTable renders the owner's my-products table with status badges.
func (t *Terminal) ProductTable(products []models.Product) {
	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tCategory\tPrice\tStatus\tPosted")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, Truncate(p.Name, 32), CategoryLabel(p), PriceLabel(p), StatusLabel(p), p.CreatedAt)
	}
	_ = w.Flush()
}

// ProductDetail renders the full product view with the gallery viewport
// at the given image index.
func (t *Terminal) ProductDetail(p models.Product, index int) {
	t.Heading(p.Name)
	if len(p.ImageURLs) == 0 {
		fmt.Fprintln(t.out, "[no images available]")
	} else {
		fmt.Fprintf(t.out, "image %d/%d: %s\n", index+1, len(p.ImageURLs), p.ImageURLs[index])
		if len(p.ImageURLs) > 1 {
			fmt.Fprintln(t.out, GalleryIndicators(index, len(p.ImageURLs)))
			for i, url := range p.ImageURLs {
				marker := " "
				if i == index {
					marker = "*"
				}
				fmt.Fprintf(t.out, " %s [%d] %s\n", marker, i+1, url)
			}
		}
	}
	fmt.Fprintf(t.out, "Price: %s\n", PriceLabel(p))
	fmt.Fprintf(t.out, "Description: %s\n", p.Description)
	fmt.Fprintf(t.out, "Contact: %s\n", p.ContactInfo)
	fmt.Fprintf(t.out, "Category: %s\n", CategoryLabel(p))
	fmt.Fprintf(t.out, "Seller: %s\n", SellerLabel(p))
	location := p.Location
	if location == "" {
		location = "Not specified"
	}
	fmt.Fprintf(t.out, "Location: %s\n", location)
	fmt.Fprintf(t.out, "Posted: %s\n", p.CreatedAt)
}

// Categories renders the category list for filtering and management.
func (t *Terminal) Categories(categories []models.Category) {
	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tDescription")
	for _, c := range categories {
		description := c.Description
		if description == "" {
			description = "No description"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, Truncate(description, 48))
	}
	_ = w.Flush()
}

// Users renders the admin user moderation table.
func (t *Terminal) Users(users []models.User) {
	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUsername\tEmail\tStatus\tJoined")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, UserStatusLabel(u), u.CreatedAt)
	}
	_ = w.Flush()
}

// AdminProducts renders the admin product moderation table.
func (t *Terminal) AdminProducts(products []models.Product) {
	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tSeller\tPrice\tStatus\tPosted")
	for _, p := range products {
		status := "Inactive"
		if p.IsActive {
			status = "Active"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, Truncate(p.Name, 32), SellerLabel(p), PriceLabel(p), status, p.CreatedAt)
	}
	_ = w.Flush()
}

// Stats renders the admin dashboard aggregates.
func (t *Terminal) Stats(s models.Stats) {
	w := tabwriter.NewWriter(t.out, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Total Users\t%d\n", s.TotalUsers)
	fmt.Fprintf(w, "Total Products\t%d\n", s.TotalProducts)
	fmt.Fprintf(w, "Active Products\t%d\n", s.ActiveProducts)
	fmt.Fprintf(w, "Categories\t%d\n", s.TotalCategories)
	fmt.Fprintf(w, "New Users (Week)\t%d\n", s.NewUsersWeek)
	fmt.Fprintf(w, "New Products (Week)\t%d\n", s.NewProductsWeek)
	_ = w.Flush()
}

// Notifications renders the notification list, marking unread entries.
func (t *Terminal) Notifications(notifications []models.Notification) {
	for _, n := range notifications {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		origin := ""
		if n.IsAdminNotification {
			origin = " • Admin"
		}
		fmt.Fprintf(t.out, "%s [%d] %s (%s%s)\n", marker, n.ID, n.Message, n.CreatedAt, origin)
	}
}

// StagedImages renders the upload previews accumulated on the product form.
func (t *Terminal) StagedImages(previews []string) {
	for _, p := range previews {
		fmt.Fprintf(t.out, "  staged: %s\n", p)
	}
}
