package auth_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// carryCookies copies the Set-Cookie headers of rec onto a new request.
func carryCookies(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "", "", time.Hour, false, nil); err == nil {
		t.Error("expected error for empty session key")
	}
}

func TestRequireSignedIn_NoUser_RedirectsToLogin(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/venues?status=pending", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	want := "/login?next=%2Fvenues%3Fstatus%3Dpending"
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("Location = %q, want %q", got, want)
	}
}

func TestRequireSignedIn_NoUser_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_NoUser_HTMX_UsesCurrentURL(t *testing.T) {
	sm := newTestSessionManager(t)

	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/teams/select-all", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://console.local/teams?page=2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/login?next=%2Fteams%3Fpage%3D2" {
		t.Errorf("HX-Redirect = %q", got)
	}
}

func TestRequire_Predicate(t *testing.T) {
	sm := newTestSessionManager(t)
	isAdmin := func(u *auth.SessionUser) bool { return strings.EqualFold(u.Role, "admin") }

	handler := sm.Require(isAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		role     string
		accept   string
		htmx     bool
		wantCode int
		wantLoc  string
	}{
		{"admin", "admin", "text/html", false, http.StatusOK, ""},
		{"uppercase admin", "ADMIN", "text/html", false, http.StatusOK, ""},
		{"member html", "member", "text/html", false, http.StatusSeeOther, "/forbidden"},
		{"member api", "member", "application/json", false, http.StatusForbidden, ""},
		{"member htmx", "member", "", true, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/users", nil)
			req.Header.Set("Accept", tt.accept)
			if tt.htmx {
				req.Header.Set("HX-Request", "true")
			}
			req = auth.WithTestUser(req, &auth.SessionUser{ID: "1", Role: tt.role})
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantLoc != "" && rec.Header().Get("Location") != tt.wantLoc {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), tt.wantLoc)
			}
			if tt.htmx && rec.Header().Get("HX-Redirect") != "/forbidden" {
				t.Errorf("HX-Redirect = %q", rec.Header().Get("HX-Redirect"))
			}
		})
	}
}

func TestSignIn_RoundTripsThroughCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login/verify", nil)
	sid, err := sm.SignIn(rec, req, auth.SessionUser{ID: "42", Name: "Ada", Email: "ada@x.io", Role: "admin", RoleID: "1"}, "opaque-token")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sid == "" {
		t.Fatal("expected a session id")
	}

	var got *auth.SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), carryCookies(rec, "GET", "/dashboard"))

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != "42" || got.Name != "Ada" || got.Role != "admin" || got.RoleID != "1" {
		t.Errorf("user = %+v", got)
	}
	if got.Token != "opaque-token" || got.SessionID != sid {
		t.Errorf("token/sid = %q/%q", got.Token, got.SessionID)
	}
}

func TestLoadSessionUser_ExpiredJWTIsSignedOut(t *testing.T) {
	sm := newTestSessionManager(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sm.SetClock(func() time.Time { return now })

	rec := httptest.NewRecorder()
	token := signedJWT(t, now.Add(time.Hour))
	if _, err := sm.SignIn(rec, httptest.NewRequest("POST", "/", nil), auth.SessionUser{ID: "1", Role: "admin"}, token); err != nil {
		t.Fatal(err)
	}

	check := func() bool {
		var ok bool
		h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok = auth.CurrentUser(r)
		}))
		h.ServeHTTP(httptest.NewRecorder(), carryCookies(rec, "GET", "/"))
		return ok
	}

	if !check() {
		t.Fatal("user should be signed in before expiry")
	}
	now = now.Add(2 * time.Hour)
	if check() {
		t.Error("user should be signed out after token expiry")
	}
}

func TestLogout_ReturnsSessionIDAndExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	rec := httptest.NewRecorder()
	sid, err := sm.SignIn(rec, httptest.NewRequest("POST", "/", nil), auth.SessionUser{ID: "1"}, "t")
	if err != nil {
		t.Fatal(err)
	}

	out := httptest.NewRecorder()
	gotSID, err := sm.Logout(out, carryCookies(rec, "POST", "/logout"))
	if err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if gotSID != sid {
		t.Errorf("sid = %q, want %q", gotSID, sid)
	}
	cookies := out.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestPending_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	sent := time.Unix(1_700_000_000, 0)

	rec := httptest.NewRecorder()
	err := sm.SetPending(rec, httptest.NewRequest("POST", "/login", nil), auth.Pending{Email: "ada@x.io", SentAt: sent, Next: "/venues"})
	if err != nil {
		t.Fatal(err)
	}

	p, ok := sm.Pending(carryCookies(rec, "GET", "/login/verify"))
	if !ok || p.Email != "ada@x.io" || !p.SentAt.Equal(sent) || p.Next != "/venues" {
		t.Errorf("Pending = %+v, %v", p, ok)
	}

	rec2 := httptest.NewRecorder()
	if err := sm.ClearPending(rec2, carryCookies(rec, "POST", "/login/back")); err != nil {
		t.Fatal(err)
	}
	p, ok = sm.Pending(carryCookies(rec2, "GET", "/login"))
	if ok || p.Email != "" {
		t.Errorf("pending should be cleared, got %+v", p)
	}
	if p.Next != "/venues" {
		t.Errorf("next should survive ClearPending, got %q", p.Next)
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)
	if got, ok := auth.TokenExpiry(signedJWT(t, exp)); !ok || !got.Equal(exp) {
		t.Errorf("TokenExpiry = %v, %v", got, ok)
	}
	if _, ok := auth.TokenExpiry("not-a-jwt"); ok {
		t.Error("opaque token should report ok=false")
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	user, ok := auth.CurrentUser(req)
	if ok || user != nil {
		t.Error("expected no user in context")
	}
	if auth.Token(req) != "" {
		t.Error("expected empty token")
	}
}

func TestCSRFKey_Deterministic(t *testing.T) {
	k1, err := auth.CSRFKey("secret-one")
	if err != nil {
		t.Fatalf("CSRFKey: %v", err)
	}
	k2, _ := auth.CSRFKey("secret-one")
	k3, _ := auth.CSRFKey("secret-two")
	if len(k1) != 32 {
		t.Fatalf("len = %d, want 32", len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Error("same secret gave different keys")
	}
	if bytes.Equal(k1, k3) {
		t.Error("different secrets gave the same key")
	}
}
