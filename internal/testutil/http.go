package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Repeated calls on the same request add to the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// AdminUser returns a signed-in administrator with a backend token and a
// session id.
func AdminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:        "1",
		Name:      "Test Admin",
		Email:     "admin@test.com",
		Role:      "admin",
		RoleID:    "1",
		Token:     "test-token",
		SessionID: "sid-admin",
	}
}

// OrganizerUser returns a signed-in user without console access.
func OrganizerUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:        "2",
		Name:      "Test Organizer",
		Email:     "organizer@test.com",
		Role:      "organizer",
		RoleID:    "3",
		Token:     "organizer-token",
		SessionID: "sid-organizer",
	}
}

// WithUser injects user into the request context, bypassing the session.
func WithUser(r *http.Request, user *auth.SessionUser) *http.Request {
	return auth.WithTestUser(r, user)
}

// NewAuthenticatedRequest creates a request with user in context.
func NewAuthenticatedRequest(method, target string, user *auth.SessionUser) *http.Request {
	return WithUser(httptest.NewRequest(method, target, nil), user)
}

// NewFormRequest creates a form POST with user in context.
func NewFormRequest(target, form string, user *auth.SessionUser) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != nil {
		r = WithUser(r, user)
	}
	return r
}

// ResponseRecorder wraps httptest.ResponseRecorder with assertions.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t testing.TB, expected int) {
	t.Helper()
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t testing.TB, expectedLocation string) {
	t.Helper()
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	if loc := r.Header().Get("Location"); loc != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", loc, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t testing.TB, expected string) {
	t.Helper()
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
