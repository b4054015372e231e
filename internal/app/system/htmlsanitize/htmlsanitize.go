// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcOnce    sync.Once
	ugc        *bluemonday.Policy
	strictOnce sync.Once
	strict     *bluemonday.Policy
)

func ugcPolicy() *bluemonday.Policy {
	ugcOnce.Do(func() {
		ugc = bluemonday.UGCPolicy()
		ugc.AllowAttrs("class").OnElements("table", "tr", "td", "th")
	})
	return ugc
}

func strictPolicy() *bluemonday.Policy {
	strictOnce.Do(func() { strict = bluemonday.StrictPolicy() })
	return strict
}

// Sanitize removes scripts, event handlers, and unsafe URLs from rich text
// the backend stores (ticket bodies, announcement text), keeping basic
// formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy().Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for direct use in templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s)) // #nosec G203 -- sanitized above
}

// Text strips every tag and returns plain text. Used for backend error
// messages and moderator notes before they reach a toast or table cell.
// Entities produced by the policy are decoded so the template escapes once.
func Text(s string) string {
	if s == "" {
		return ""
	}
	out := strictPolicy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(out))
}

// IsPlainText reports whether s contains no HTML tags.
func IsPlainText(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			continue
		}
		if i+1 < len(s) {
			c := s[i+1]
			if c == '/' || c == '!' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				if strings.IndexByte(s[i:], '>') > 0 {
					return false
				}
			}
		}
	}
	return true
}
