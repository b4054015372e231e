// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// DefaultLanding is where a signed-in administrator lands when no valid
// target was requested.
const DefaultLanding = "/dashboard"

// BackURLOptions configures SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/venues").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are substrings that disqualify a URL, to prevent
	// redirect loops back to action endpoints.
	ExcludedSubpaths []string

	// Fallback is used when no valid return URL is found.
	Fallback string
}

// local reports whether u is a same-origin absolute path.
func local(u string) bool {
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return false
	}
	return !strings.ContainsAny(u, "\r\n")
}

func allowed(u string, opts BackURLOptions) bool {
	if !local(u) {
		return false
	}
	if opts.AllowedPrefix != "" && !strings.HasPrefix(u, opts.AllowedPrefix) {
		return false
	}
	for _, ex := range opts.ExcludedSubpaths {
		if strings.Contains(u, ex) {
			return false
		}
	}
	return urlutil.SafeReturn(u, "", "") != ""
}

// SafeBackURL reads "return" from the query string, then the form, and
// returns it when it passes opts; otherwise opts.Fallback.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	for _, ret := range []string{query.Get(r, "return"), strings.TrimSpace(r.FormValue("return"))} {
		if ret != "" && allowed(ret, opts) {
			return ret
		}
	}
	return opts.Fallback
}

// signInExcluded keeps a post-sign-in redirect from landing back on the
// sign-in or sign-out endpoints.
var signInExcluded = BackURLOptions{ExcludedSubpaths: []string{"/login", "/logout"}}

// SafeNext validates a post-sign-in target. Anything that is not a local
// path, or that points at the sign-in flow itself, becomes DefaultLanding.
func SafeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || next == "/" || !allowed(next, signInExcluded) {
		return DefaultLanding
	}
	return next
}

// ListURL returns path with the list state carried by rawQuery, for
// redirecting back to a screen after a form post.
func ListURL(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
