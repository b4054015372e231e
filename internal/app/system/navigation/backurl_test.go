package navigation

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", DefaultLanding},
		{"/", DefaultLanding},
		{"https://evil.example/steal", DefaultLanding},
		{"//evil.example", DefaultLanding},
		{"/\\evil.example", DefaultLanding},
		{"/login?next=/users", DefaultLanding},
		{"/logout", DefaultLanding},
		{"javascript:alert(1)", DefaultLanding},
		{"/venues", "/venues"},
	}
	for _, tt := range tests {
		if got := SafeNext(tt.in); got != tt.want {
			t.Errorf("SafeNext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeBackURL(t *testing.T) {
	opts := BackURLOptions{AllowedPrefix: "/teams", ExcludedSubpaths: []string{"/dialog"}, Fallback: "/teams"}

	tests := []struct {
		name   string
		target string
		form   string
		want   string
	}{
		{"query", "/x?return=/teams/list", "", "/teams/list"},
		{"form", "/x", "return=/teams/list", "/teams/list"},
		{"wrong prefix", "/x?return=/users", "", "/teams"},
		{"excluded", "/x?return=/teams/4/dialog/reject", "", "/teams"},
		{"external", "/x?return=https://evil.example", "", "/teams"},
		{"missing", "/x", "", "/teams"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", tt.target, strings.NewReader(tt.form))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if got := SafeBackURL(r, opts); got != tt.want {
				t.Errorf("SafeBackURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListURL(t *testing.T) {
	if got := ListURL("/users", ""); got != "/users" {
		t.Errorf("got %q", got)
	}
	if got := ListURL("/users", "status=banned&page=2"); got != "/users?status=banned&page=2" {
		t.Errorf("got %q", got)
	}
}
