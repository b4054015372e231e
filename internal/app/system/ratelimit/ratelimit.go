// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter is a fixed-window counter keyed by an arbitrary string.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New returns a limiter admitting limit requests per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Prune drops expired windows and returns how many were removed.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, k)
			n++
		}
	}
	return n
}

// Run prunes every 2x the window duration until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	t := time.NewTicker(2 * l.duration)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Prune()
		}
	}
}

// ClientIP returns the first X-Forwarded-For entry, then X-Real-IP, then
// the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// OTPLimiter guards the sign-in endpoints. Code requests and code
// verifications are counted separately, each per client IP and per email.
type OTPLimiter struct {
	requestIP    *Limiter
	requestEmail *Limiter
	verifyIP     *Limiter
	verifyEmail  *Limiter
}

// NewOTPLimiter returns the default limits: 10 code requests per IP per
// minute and 5 per email per 10 minutes; 20 verifications per IP per minute
// and 5 per email per 5 minutes.
func NewOTPLimiter() *OTPLimiter {
	return &OTPLimiter{
		requestIP:    New(10, time.Minute),
		requestEmail: New(5, 10*time.Minute),
		verifyIP:     New(20, time.Minute),
		verifyEmail:  New(5, 5*time.Minute),
	}
}

// CheckRequest reports whether a code may be sent. The returned reason is
// shown to the user when it may not.
func (o *OTPLimiter) CheckRequest(r *http.Request, email string) (bool, string) {
	if !o.requestIP.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if key := emailKey(email); key != "" && !o.requestEmail.Allow(key) {
		return false, "Too many codes were requested for this email. Please wait a few minutes."
	}
	return true, ""
}

// CheckVerify reports whether a code may be checked.
func (o *OTPLimiter) CheckVerify(r *http.Request, email string) (bool, string) {
	if !o.verifyIP.Allow(ClientIP(r)) {
		return false, "Too many sign-in attempts. Please wait a minute before trying again."
	}
	if key := emailKey(email); key != "" && !o.verifyEmail.Allow(key) {
		return false, "Too many incorrect codes. Please wait a few minutes and request a new code."
	}
	return true, ""
}

// Succeeded clears the per-email counters after a successful sign-in.
func (o *OTPLimiter) Succeeded(email string) {
	if key := emailKey(email); key != "" {
		o.requestEmail.Reset(key)
		o.verifyEmail.Reset(key)
	}
}

// Run prunes all four limiters until ctx is done.
func (o *OTPLimiter) Run(ctx context.Context) {
	for _, l := range []*Limiter{o.requestIP, o.requestEmail, o.verifyIP, o.verifyEmail} {
		go l.Run(ctx)
	}
	<-ctx.Done()
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
