package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is what we keep in the session cookie and inject into
// r.Context(). Token is the backend bearer token; it never leaves the server
// except inside the encrypted cookie.
type SessionUser struct {
	ID        string
	Name      string
	Email     string
	Role      string
	RoleID    string
	Token     string
	SessionID string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// Token returns the backend token of the signed-in user, or "".
func Token(r *http.Request) string {
	if u, ok := CurrentUser(r); ok {
		return u.Token
	}
	return ""
}

// WithTestUser injects u into the request context. Tests use it to bypass
// the cookie round trip.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?next=...
//   - HTML: 303 redirect to /login?next=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return sm.Require(nil)(next)
}

// Require is RequireSignedIn plus a check on the user. A signed-in user for
// whom allowed returns false gets the forbidden page (or 403 for non-HTML
// callers). A nil allowed admits every signed-in user.
func (sm *SessionManager) Require(allowed func(*SessionUser) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r)
			if !ok {
				redirectToLogin(w, r)
				return
			}
			if allowed != nil && !allowed(u) {
				if r.Header.Get("HX-Request") == "true" {
					w.Header().Set("HX-Redirect", "/forbidden")
					w.WriteHeader(http.StatusForbidden)
					return
				}
				if wantsHTML(r) {
					http.Redirect(w, r, "/forbidden", http.StatusSeeOther)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginURL returns /login carrying the current request as the next target.
func LoginURL(r *http.Request) string {
	return "/login?next=" + url.QueryEscape(currentURI(r))
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	dest := LoginURL(r)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, dest, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// RedirectToLogin sends the browser to the login page, keeping the current
// page as the next target. HTMX-aware.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectToLogin(w, r)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	// HTMX partial requests carry the page the user is on.
	if cur := r.Header.Get("HX-Current-URL"); cur != "" {
		if u, err := url.Parse(cur); err == nil {
			return u.RequestURI()
		}
	}
	return r.URL.RequestURI()
}
