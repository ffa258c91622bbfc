package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kmanzi/marketclient/internal/admin"
	"github.com/kmanzi/marketclient/internal/models"
	"github.com/kmanzi/marketclient/internal/products"
	"github.com/kmanzi/marketclient/internal/ui"
	"go.uber.org/zap"
)

const helpText = `Pages:    home, products, my, notifications, admin, about, contact
Session:  login, register, logout, whoami
Browse:   search <text>, clear, filter <category-id>, more, view <id>, categories
Selling:  post, edit <id>, delete <id>
Inbox:    read <id>, read-all
Admin:    tab <users|products|categories|broadcast>, toggle-user <id>,
          del-user <id> <username>, toggle-product <id>, del-product <id> <name>,
          add-category, del-category <id>, broadcast <message>
Other:    send-message, help, exit`

// Run drives the interactive shell loop until input is exhausted or the
// user exits.
func (a *App) Run(ctx context.Context) {
	for {
		line, ok := a.view.Prompt("marketplace> ")
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			a.view.Toast(ui.ToastInfo, "Bye")
			return
		}
		a.dispatch(ctx, args)
	}
}

func (a *App) dispatch(ctx context.Context, args []string) {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		a.view.Heading("Commands")
		for _, l := range strings.Split(helpText, "\n") {
			a.view.Toast(ui.ToastInfo, l)
		}

	case "home", "products", "my-products", "notifications", "admin", "about", "contact":
		page := Page(cmd)
		if page == PageProducts {
			a.ClearSearch(ctx)
		}
		a.ShowPage(ctx, page)
	case "my":
		a.ShowPage(ctx, PageMyProducts)

	case "login":
		email, _ := a.view.Prompt("Email: ")
		password, _ := a.view.Prompt("Password: ")
		a.Login(ctx, email, password)
	case "register":
		username, _ := a.view.Prompt("Username: ")
		email, _ := a.view.Prompt("Email: ")
		password, _ := a.view.Prompt("Password: ")
		a.Register(ctx, username, email, password)
	case "logout":
		a.Logout(ctx)
	case "whoami":
		a.view.UserBar(a.state.User)

	case "search":
		a.QueueSearch(ctx, strings.Join(rest, " "))
	case "clear":
		a.ClearSearch(ctx)
	case "filter":
		id, ok := parseID(rest, 0)
		if !ok {
			a.view.Toast(ui.ToastError, "Usage: filter <category-id>")
			return
		}
		a.products.SetCategoryFilter(id)
		a.ShowPage(ctx, PageProducts)
	case "categories":
		a.loadCategories(ctx)
	case "more":
		if err := a.products.LoadAll(ctx, false); err != nil {
			a.log.Warn("failed to load more products", zap.Error(err))
		}
	case "view":
		id, ok := parseID(rest, 0)
		if !ok {
			a.view.Toast(ui.ToastError, "Usage: view <product-id>")
			return
		}
		a.showDetail(ctx, id)

	case "post":
		a.productForm(ctx, 0)
	case "edit":
		id, ok := parseID(rest, 0)
		if !ok {
			a.view.Toast(ui.ToastError, "Usage: edit <product-id>")
			return
		}
		a.productForm(ctx, id)
	case "delete":
		id, ok := parseID(rest, 0)
		if !ok {
			a.view.Toast(ui.ToastError, "Usage: delete <product-id>")
			return
		}
		if err := a.products.Delete(ctx, id); err == nil {
			a.RefreshCurrentView(ctx)
		}

	case "read":
		id, ok := parseID(rest, 0)
		if !ok {
			a.view.Toast(ui.ToastError, "Usage: read <notification-id>")
			return
		}
		_ = a.notifications.MarkRead(ctx, id)
	case "read-all":
		_ = a.notifications.MarkAllRead(ctx)

	case "tab", "toggle-user", "del-user", "toggle-product", "del-product",
		"add-category", "del-category", "broadcast":
		a.dispatchAdmin(ctx, cmd, rest)

	case "send-message":
		a.contactForm(ctx)

	default:
		a.view.Toast(ui.ToastInfo, "Unknown command. Type 'help' for a list of commands.")
	}
}

func (a *App) dispatchAdmin(ctx context.Context, cmd string, rest []string) {
	if a.state.User == nil || !a.state.User.IsAdmin {
		a.view.Toast(ui.ToastError, "Admin access required")
		a.ShowPage(ctx, PageHome)
		return
	}
	switch cmd {
	case "tab":
		if len(rest) == 0 {
			a.view.Toast(ui.ToastError, "Usage: tab <users|products|categories|broadcast>")
			return
		}
		switch rest[0] {
		case "users":
			a.admin.SwitchTab(ctx, admin.TabUsers)
		case "products":
			a.admin.SwitchTab(ctx, admin.TabProducts)
		case "categories":
			a.admin.SwitchTab(ctx, admin.TabCategories)
		case "broadcast":
			a.admin.SwitchTab(ctx, admin.TabBroadcast)
		default:
			a.view.Toast(ui.ToastError, "Unknown tab: "+rest[0])
		}
	case "toggle-user":
		if id, ok := parseID(rest, 0); ok {
			_ = a.admin.ToggleUser(ctx, id)
		}
	case "del-user":
		id, ok := parseID(rest, 0)
		if !ok || len(rest) < 2 {
			a.view.Toast(ui.ToastError, "Usage: del-user <id> <username>")
			return
		}
		_ = a.admin.DeleteUser(ctx, id, rest[1])
	case "toggle-product":
		if id, ok := parseID(rest, 0); ok {
			_ = a.admin.ToggleProduct(ctx, id)
		}
	case "del-product":
		id, ok := parseID(rest, 0)
		if !ok || len(rest) < 2 {
			a.view.Toast(ui.ToastError, "Usage: del-product <id> <name>")
			return
		}
		_ = a.admin.DeleteProduct(ctx, id, strings.Join(rest[1:], " "))
	case "add-category":
		name, _ := a.view.Prompt("Category name: ")
		description, _ := a.view.Prompt("Description (optional): ")
		_ = a.admin.AddCategory(ctx, name, description)
	case "del-category":
		if id, ok := parseID(rest, 0); ok {
			_ = a.admin.DeleteCategory(ctx, id)
		}
	case "broadcast":
		_ = a.admin.Broadcast(ctx, strings.Join(rest, " "))
	}
}

// showDetail renders the product detail and, when the product carries
// more than one image, runs the gallery loop. Leaving the loop is what
// detaches gallery input handling; nothing leaks into the main loop.
func (a *App) showDetail(ctx context.Context, id int64) {
	p, err := a.products.Detail(ctx, id)
	if err != nil {
		return
	}
	g := products.NewGallery(len(p.ImageURLs))
	a.view.ProductDetail(*p, g.Index())
	if g.Len() < 2 {
		return
	}
	for {
		line, ok := a.view.Prompt("gallery (n=next, p=prev, 1..N=jump, q=close)> ")
		if !ok {
			return
		}
		switch {
		case line == "q":
			return
		case line == "n":
			if g.Next() {
				a.view.ProductDetail(*p, g.Index())
			}
		case line == "p":
			if g.Prev() {
				a.view.ProductDetail(*p, g.Index())
			}
		default:
			if n, err := strconv.Atoi(line); err == nil {
				if g.Select(n - 1) {
					a.view.ProductDetail(*p, g.Index())
				}
			}
		}
	}
}

// productForm prompts the product fields and images, then submits.
// A non-zero id pre-fills from the existing product.
func (a *App) productForm(ctx context.Context, id int64) {
	if a.state.User == nil {
		a.view.Toast(ui.ToastWarning, "Please login to post products")
		return
	}

	form := products.Form{ID: id}
	if id != 0 {
		existing, err := a.products.LoadForEdit(ctx, id)
		if err != nil {
			return
		}
		form.Name = existing.Name
		form.CategoryID = existing.CategoryID
		form.Description = existing.Description
		form.ContactInfo = existing.ContactInfo
		form.Location = existing.Location
		if existing.Price != nil {
			form.Price = strconv.FormatFloat(*existing.Price, 'f', -1, 64)
		}
	} else {
		a.products.ResetUpload()
	}

	a.loadCategories(ctx)
	form.Name = a.promptDefault("Name", form.Name)
	if raw := a.promptDefault("Category ID", strconv.FormatInt(form.CategoryID, 10)); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			form.CategoryID = n
		}
	}
	form.Price = a.promptDefault("Price (optional)", form.Price)
	form.Description = a.promptDefault("Description", form.Description)
	form.ContactInfo = a.promptDefault("Contact info", form.ContactInfo)
	form.Location = a.promptDefault("Location", form.Location)

	for {
		line, ok := a.view.Prompt("Image path (rm <url> to unstage, empty to finish): ")
		if !ok || line == "" {
			break
		}
		if rest, found := strings.CutPrefix(line, "rm "); found {
			a.products.RemoveImage(strings.TrimSpace(rest))
			continue
		}
		_ = a.products.StageImage(ctx, line)
	}

	if err := a.products.Submit(ctx, form); err != nil {
		return
	}
	a.RefreshCurrentView(ctx)
}

// contactForm prompts the contact-page fields and submits.
func (a *App) contactForm(ctx context.Context) {
	name, _ := a.view.Prompt("Name: ")
	email, _ := a.view.Prompt("Email: ")
	subject, _ := a.view.Prompt("Subject: ")
	message, _ := a.view.Prompt("Message: ")
	_ = a.SendContactMessage(ctx, models.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	})
}

func (a *App) promptDefault(label, current string) string {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	value, ok := a.view.Prompt(label + ": ")
	if !ok || value == "" {
		return current
	}
	return value
}

func parseID(args []string, pos int) (int64, bool) {
	if len(args) <= pos {
		return 0, false
	}
	id, err := strconv.ParseInt(args[pos], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
