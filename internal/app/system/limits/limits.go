// internal/app/system/limits/limits.go
package limits

import "net/http"

// Request body size limits for the console's forms.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxFormSize bounds sign-in, settings, and action forms.
	MaxFormSize = 64 << 10 // 64 KB

	// MaxNotesLen is the longest moderation note sent to the backend, in
	// runes.
	MaxNotesLen = 2000
)

// ParseForm parses r's form with the body capped at MaxFormSize.
func ParseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
	return r.ParseForm()
}
