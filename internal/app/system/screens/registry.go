// internal/app/system/screens/registry.go
package screens

import (
	"sync"
	"time"

	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"go.uber.org/zap"
)

// Session is the server-side state of one signed-in browser session: one
// list controller per screen, the pending notifications, and the UI
// preferences handle.
type Session struct {
	ID      string
	UserID  string
	Notices *notify.Queue
	Prefs   *preferences.Settings

	mu       sync.Mutex
	values   map[string]any
	lastSeen time.Time
}

// Value returns the session value stored under key, building it on first
// use or when the stored value has a different type.
func Value[V any](s *Session, key string, build func() V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key].(V); ok {
		return v
	}
	v := build()
	s.values[key] = v
	return v
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Registry holds the live sessions keyed by session id.
type Registry struct {
	prefs preferences.Repository
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry. Preferences handles are created
// over prefs.
func NewRegistry(prefs preferences.Repository, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		prefs:    prefs,
		log:      log,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// SetClock replaces the time source.
func (r *Registry) SetClock(now func() time.Time) { r.now = now }

// Get returns the session for sid, creating it when missing or when it
// belonged to a different user, and marks it as seen.
func (r *Registry) Get(sid, userID string) *Session {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sid]
	if !ok || s.UserID != userID {
		s = &Session{
			ID:      sid,
			UserID:  userID,
			Notices: notify.NewQueue(),
			Prefs:   preferences.NewSettings(r.prefs, userID, r.log),
			values:  map[string]any{},
		}
		r.sessions[sid] = s
	}
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
	return s
}

// Drop forgets sid. It is called on sign-out.
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
}

// Sweep evicts sessions unused for longer than idle and returns how many
// were removed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for sid, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, sid)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
