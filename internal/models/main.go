// Package models defines the backend-owned records the client mirrors in
// memory, plus the response envelopes the marketplace API wraps them in.
package models

// User represents a registered account. The client never mutates users
// directly; admin moderation actions change server state and the client
// re-fetches.
type User struct {
	// ID is the unique identifier for the user.
	ID int64 `json:"id"`
	// Username is the public display name.
	Username string `json:"username"`
	// Email is the login identity.
	Email string `json:"email"`
	// IsActive reports whether the account is allowed to sign in.
	IsActive bool `json:"is_active"`
	// IsAdmin grants access to the admin dashboard.
	IsAdmin bool `json:"is_admin"`
	// CreatedAt is the server-formatted registration timestamp.
	CreatedAt string `json:"created_at"`
}

// Category is a product grouping managed by admins.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Product is a listing posted by a seller.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price is optional; sellers may ask buyers to contact them instead.
	Price *float64 `json:"price,omitempty"`
	// PriceDisplay is the server-formatted price string, when present.
	PriceDisplay   string   `json:"price_display,omitempty"`
	CategoryID     int64    `json:"category_id"`
	CategoryName   string   `json:"category_name"`
	ContactInfo    string   `json:"contact_info"`
	Location       string   `json:"location"`
	ImageURLs      []string `json:"image_urls"`
	SellerUsername string   `json:"seller_username"`
	IsActive       bool     `json:"is_active"`
	IsSold         bool     `json:"is_sold"`
	CreatedAt      string   `json:"created_at"`
}

// Notification is a message delivered to a single user. Notifications
// transition unread to read and are never deleted by the client.
type Notification struct {
	ID                  int64  `json:"id"`
	Message             string `json:"message"`
	IsRead              bool   `json:"is_read"`
	IsAdminNotification bool   `json:"is_admin_notification"`
	CreatedAt           string `json:"created_at"`
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	TotalUsers      int `json:"total_users"`
	TotalProducts   int `json:"total_products"`
	ActiveProducts  int `json:"active_products"`
	TotalCategories int `json:"total_categories"`
	NewUsersWeek    int `json:"new_users_week"`
	NewProductsWeek int `json:"new_products_week"`
}

// ProductInput is the payload for creating or editing a product.
type ProductInput struct {
	Name        string   `json:"name"`
	CategoryID  int64    `json:"category_id"`
	Description string   `json:"description"`
	ContactInfo string   `json:"contact_info"`
	Location    string   `json:"location"`
	Price       *float64 `json:"price,omitempty"`
	ImageURLs   []string `json:"image_urls"`
}

// ContactMessage is the payload for the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Response envelopes. Field names follow the backend contract exactly.

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// UserResponse wraps a single user, as returned by /auth/me.
type UserResponse struct {
	User User `json:"user"`
}

// ProductPage is one page of the paginated product listing.
type ProductPage struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	Pages       int       `json:"pages"`
	CurrentPage int       `json:"current_page"`
}

// ProductList is an unpaginated product collection (my-products, admin).
type ProductList struct {
	Products []Product `json:"products"`
}

// ProductResponse wraps a single product.
type ProductResponse struct {
	Product Product `json:"product"`
}

// CategoryList wraps the category collection.
type CategoryList struct {
	Categories []Category `json:"categories"`
}

// UserList wraps the admin user collection.
type UserList struct {
	Users []User `json:"users"`
}

// NotificationList carries the user's notifications newest-first along
// with the unread badge count.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// StatsResponse wraps the dashboard aggregate.
type StatsResponse struct {
	Stats Stats `json:"stats"`
}

// UploadResponse is returned by the image upload endpoint.
type UploadResponse struct {
	ImageURL string `json:"image_url"`
}
