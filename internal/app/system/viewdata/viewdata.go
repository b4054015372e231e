// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the title bar and the sign-in page.
const SiteName = "Moderation Console"

// NavItem is one sidenav entry.
type NavItem struct {
	Label  string
	Path   string
	Icon   string
	Active bool
}

// Menu lists the sidenav entries in display order.
var Menu = []NavItem{
	{Label: "Dashboard", Path: "/dashboard", Icon: "dashboard"},
	{Label: "Users", Path: "/users", Icon: "group"},
	{Label: "Venues", Path: "/venues", Icon: "stadium"},
	{Label: "Events", Path: "/events", Icon: "event"},
	{Label: "Documents", Path: "/documents", Icon: "description"},
	{Label: "Teams", Path: "/teams", Icon: "groups"},
	{Label: "Coaches", Path: "/coaches", Icon: "sports"},
	{Label: "Tickets", Path: "/tickets", Icon: "support_agent"},
	{Label: "Audit log", Path: "/audit", Icon: "history"},
	{Label: "Settings", Path: "/settings", Icon: "settings"},
}

// BaseVM contains common fields for all view models.
// Embed this struct in feature-specific view models.
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	UserName   string
	UserEmail  string
	Role       string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string
	Nav         []NavItem

	CSRFToken string

	// Toasts are the notifications drained from the session queue for this
	// render.
	Toasts []notify.Notification
	Prefs  models.Preferences
}

// NewBaseVM creates a fully populated BaseVM for a page. Rendering it
// drains the session's notification queue.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		Prefs:       models.DefaultPreferences(),
	}

	if u, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.UserName = u.Name
		vm.UserEmail = u.Email
		vm.Role = u.Role
		vm.Nav = navFor(vm.CurrentPath)
	}

	if s, ok := screens.FromRequest(r); ok {
		vm.Toasts = s.Notices.Drain()
		vm.Prefs = s.Prefs.Get(r.Context())
	}
	return vm
}

// Toasts drains the session queue without building a full BaseVM. HTMX
// fragments use it to deliver notifications out of band.
func Toasts(r *http.Request) []notify.Notification {
	if s, ok := screens.FromRequest(r); ok {
		return s.Notices.Drain()
	}
	return nil
}

func navFor(current string) []NavItem {
	out := make([]NavItem, len(Menu))
	for i, it := range Menu {
		it.Active = current == it.Path || strings.HasPrefix(current, it.Path+"/")
		out[i] = it
	}
	return out
}
