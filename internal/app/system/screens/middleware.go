// internal/app/system/screens/middleware.go
package screens

import (
	"context"
	"net/http"

	"github.com/dalemusser/modconsole/internal/app/system/auth"
)

type ctxKey struct{}

// Attach puts the signed-in user's Session into the request context. It
// must run after the session user is loaded; anonymous requests pass
// through untouched.
func (r *Registry) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if u, ok := auth.CurrentUser(req); ok && u.SessionID != "" {
			s := r.Get(u.SessionID, u.ID)
			req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, s))
		}
		next.ServeHTTP(w, req)
	})
}

// FromRequest returns the Session attached by Attach.
func FromRequest(r *http.Request) (*Session, bool) {
	s, ok := r.Context().Value(ctxKey{}).(*Session)
	return s, ok
}

// WithSession attaches s to r. Tests use it to bypass the registry.
func WithSession(r *http.Request, s *Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, s))
}
