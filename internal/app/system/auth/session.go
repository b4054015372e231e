package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// DefaultSessionName is the cookie name used when none is configured.
const DefaultSessionName = "modconsole-session"

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"
	roleIDKey    = "user_role_id"
	tokenKey     = "token"
	tokenExpKey  = "token_exp"
	sidKey       = "sid"

	pendingEmailKey = "pending_email"
	otpSentAtKey    = "otp_sent_at"
	nextKey         = "next"
)

// SessionManager owns the cookie store and the session-backed user.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
	now   func() time.Time
}

// NewSessionManager builds a cookie store keyed from sessionKey. The
// `secure` flag controls whether cookies are marked Secure; in local dev over
// http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	hashKey, blockKey, err := deriveKeys(sessionKey)
	if err != nil {
		return nil, err
	}
	store := sessions.NewCookieStore(hashKey, blockKey)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger, now: time.Now}, nil
}

// SetClock replaces the time source. Tests use it to expire tokens.
func (sm *SessionManager) SetClock(now func() time.Time) { sm.now = now }

// session returns the named session. A cookie that no longer decodes (for
// example after a key change) yields a fresh session.
func (sm *SessionManager) session(r *http.Request) *sessions.Session {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.log.Debug("discarding undecodable session cookie", zap.Error(err))
		} else {
			sm.log.Warn("session load failed", zap.Error(err))
		}
	}
	return sess
}

// LoadSessionUser injects the user into context if they are signed in and
// their token has not expired.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := sm.session(r)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			exp, _ := sess.Values[tokenExpKey].(int64)
			if exp > 0 && !sm.now().Before(time.Unix(exp, 0)) {
				sm.log.Debug("session token expired", zap.String("user_id", getString(sess, userIDKey)))
			} else {
				r = withUser(r, &SessionUser{
					ID:        getString(sess, userIDKey),
					Name:      getString(sess, userNameKey),
					Email:     getString(sess, userEmailKey),
					Role:      getString(sess, userRoleKey),
					RoleID:    getString(sess, roleIDKey),
					Token:     getString(sess, tokenKey),
					SessionID: getString(sess, sidKey),
				})
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SignIn stores u and token in the session, replacing any pending sign-in
// state, and returns the new session id.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser, token string) (string, error) {
	sess := sm.session(r)
	for _, k := range []string{pendingEmailKey, otpSentAtKey, nextKey} {
		delete(sess.Values, k)
	}
	sid := uuid.NewString()
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmailKey] = u.Email
	sess.Values[userRoleKey] = u.Role
	sess.Values[roleIDKey] = u.RoleID
	sess.Values[tokenKey] = token
	sess.Values[sidKey] = sid
	delete(sess.Values, tokenExpKey)
	if exp, ok := TokenExpiry(token); ok {
		sess.Values[tokenExpKey] = exp.Unix()
	}
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return sid, nil
}

// Logout clears the session cookie and returns the session id that was in
// use, so per-session state can be dropped.
func (sm *SessionManager) Logout(w http.ResponseWriter, r *http.Request) (string, error) {
	sess := sm.session(r)
	sid := getString(sess, sidKey)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return sid, fmt.Errorf("clear session: %w", err)
	}
	return sid, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Pending sign-in                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// Pending is the state of a sign-in between requesting and verifying a code.
type Pending struct {
	Email  string
	SentAt time.Time
	Next   string
}

// Pending returns the pending sign-in, if any.
func (sm *SessionManager) Pending(r *http.Request) (Pending, bool) {
	sess := sm.session(r)
	email := getString(sess, pendingEmailKey)
	if email == "" {
		return Pending{Next: getString(sess, nextKey)}, false
	}
	p := Pending{Email: email, Next: getString(sess, nextKey)}
	if ts, ok := sess.Values[otpSentAtKey].(int64); ok && ts > 0 {
		p.SentAt = time.Unix(ts, 0)
	}
	return p, true
}

// SetPending stores p. A zero SentAt clears the stored send time.
func (sm *SessionManager) SetPending(w http.ResponseWriter, r *http.Request, p Pending) error {
	sess := sm.session(r)
	sess.Values[pendingEmailKey] = p.Email
	if p.SentAt.IsZero() {
		delete(sess.Values, otpSentAtKey)
	} else {
		sess.Values[otpSentAtKey] = p.SentAt.Unix()
	}
	if p.Next != "" {
		sess.Values[nextKey] = p.Next
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save pending sign-in: %w", err)
	}
	return nil
}

// ClearPending removes the pending email and send time, keeping next.
func (sm *SessionManager) ClearPending(w http.ResponseWriter, r *http.Request) error {
	sess := sm.session(r)
	delete(sess.Values, pendingEmailKey)
	delete(sess.Values, otpSentAtKey)
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear pending sign-in: %w", err)
	}
	return nil
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
