// Package ui renders application state to the terminal. Managers depend on
// narrow consumer-side interfaces that *Terminal satisfies, so their logic
// is testable with recording fakes and no real terminal.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kmanzi/marketclient/internal/models"
)

// ToastKind classifies transient user-facing messages.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

// Confirmer asks the user to approve a destructive action before the
// request is issued. Tests script the answer.
type Confirmer interface {
	Confirm(prompt string) bool
}

// PriceLabel derives the display price for a product: the server-formatted
// string when present, a formatted numeric price otherwise, and a
// contact-the-seller fallback when neither exists.
func PriceLabel(p models.Product) string {
	if p.PriceDisplay != "" {
		return p.PriceDisplay
	}
	if p.Price != nil {
		return "RWF " + strconv.FormatFloat(*p.Price, 'f', -1, 64)
	}
	return "Contact for price"
}

// StatusLabel derives the status badge for a listing row. Inactive wins
// over sold, matching how the owner table presents moderated products.
func StatusLabel(p models.Product) string {
	if !p.IsActive {
		return "Inactive"
	}
	if p.IsSold {
		return "Sold"
	}
	return "Active"
}

// UserStatusLabel derives the status badge for an account row.
func UserStatusLabel(u models.User) string {
	if u.IsActive {
		return "Active"
	}
	return "Inactive"
}

// CategoryLabel falls back to a placeholder for products whose category
// was deleted out from under them.
func CategoryLabel(p models.Product) string {
	if p.CategoryName == "" {
		return "Uncategorized"
	}
	return p.CategoryName
}

// SellerLabel falls back to a placeholder when the seller is unknown.
func SellerLabel(p models.Product) string {
	if p.SellerUsername == "" {
		return "Unknown"
	}
	return p.SellerUsername
}

// GalleryIndicators renders the dot row for an image gallery: one dot per
// image, the active index filled.
func GalleryIndicators(index, total int) string {
	var b strings.Builder
	for i := 0; i < total; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == index {
			b.WriteString("●")
		} else {
			b.WriteString("○")
		}
	}
	return b.String()
}

// Truncate shortens s for table cells, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 1 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func badgeText(unread int) string {
	return fmt.Sprintf("You have %d unread notification(s)", unread)
}
