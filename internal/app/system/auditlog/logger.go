// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Destination modes for a category.
const (
	ModeAll = "all" // MongoDB and zap
	ModeDB  = "db"
	ModeLog = "log"
	ModeOff = "off"
)

// Config holds the destination mode per category.
type Config struct {
	Auth  string // sign-in, sign-out, session revocation
	Admin string // actions taken on backend records
}

// ValidMode reports whether mode is one of all, db, log, off.
func ValidMode(mode string) bool {
	switch strings.ToLower(mode) {
	case ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Sink persists audit events. *audit.Store implements it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger writes audit events to a Sink and to zap according to Config.
// A nil *Logger is a no-op.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New returns a Logger. sink may be nil, in which case db destinations are
// skipped.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) modeFor(category string) string {
	var m string
	switch category {
	case audit.CategoryAuth:
		m = l.config.Auth
	case audit.CategoryAdmin:
		m = l.config.Admin
	}
	if m = strings.ToLower(strings.TrimSpace(m)); m == "" {
		return ModeAll
	}
	return m
}

// Log records event according to its category's mode.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	mode := l.modeFor(event.Category)
	if mode == ModeOff {
		return
	}
	if mode == ModeAll || mode == ModeLog {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.Resource != "" {
		fields = append(fields, zap.String("resource", event.Resource), zap.String("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

func base(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// --- Authentication Events ---

// CodeRequested logs a sign-in code sent to email.
func (l *Logger) CodeRequested(ctx context.Context, r *http.Request, email string, resend bool) {
	e := base(r, audit.CategoryAuth, audit.EventCodeRequested, true)
	e.Details = map[string]string{"email": email, "resend": strconv.FormatBool(resend)}
	l.Log(ctx, e)
}

// CodeRequestFailed logs a rejected code request.
func (l *Logger) CodeRequestFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventCodeRequestFailed, false)
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginSuccess logs an administrator signing in.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID, email string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginSuccess, true)
	e.UserID = userID
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginFailedCode logs a code the backend did not accept.
func (l *Logger) LoginFailedCode(ctx context.Context, r *http.Request, email, reason string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginFailedCode, false)
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

// LoginDenied logs a valid sign-in refused because the user is not an
// administrator.
func (l *Logger) LoginDenied(ctx context.Context, r *http.Request, userID, email, role string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginDeniedNotAdmin, false)
	e.UserID = userID
	e.FailureReason = "not an administrator"
	e.Details = map[string]string{"email": email, "role": role}
	l.Log(ctx, e)
}

// RateLimited logs a sign-in step refused by the rate limiter.
func (l *Logger) RateLimited(ctx context.Context, r *http.Request, email, step string) {
	e := base(r, audit.CategoryAuth, audit.EventLoginRateLimited, false)
	e.FailureReason = "rate limited"
	e.Details = map[string]string{"email": email, "step": step}
	l.Log(ctx, e)
}

// Logout logs a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID string) {
	e := base(r, audit.CategoryAuth, audit.EventLogout, true)
	e.UserID = userID
	l.Log(ctx, e)
}

// SessionRevoked logs a session ended because the backend rejected its token.
func (l *Logger) SessionRevoked(ctx context.Context, r *http.Request, userID string, status int) {
	e := base(r, audit.CategoryAuth, audit.EventSessionRevoked, false)
	e.UserID = userID
	e.FailureReason = fmt.Sprintf("backend status %d", status)
	l.Log(ctx, e)
}

// --- Admin Events ---

// Action logs one row action. A nil err records success.
func (l *Logger) Action(ctx context.Context, r *http.Request, actorID, resource, action, targetID string, notes bool, err error) {
	typ := audit.EventActionPerformed
	if err != nil {
		typ = audit.EventActionFailed
	}
	e := base(r, audit.CategoryAdmin, typ, err == nil)
	e.ActorID = actorID
	e.Resource = resource
	e.TargetID = targetID
	e.Details = map[string]string{"action": action, "with_notes": strconv.FormatBool(notes)}
	if err != nil {
		e.FailureReason = err.Error()
	}
	l.Log(ctx, e)
}

// Bulk logs an action applied to a selection.
func (l *Logger) Bulk(ctx context.Context, r *http.Request, actorID, resource, action string, succeeded, failed int) {
	e := base(r, audit.CategoryAdmin, audit.EventBulkAction, failed == 0)
	e.ActorID = actorID
	e.Resource = resource
	e.Details = map[string]string{
		"action":    action,
		"succeeded": strconv.Itoa(succeeded),
		"failed":    strconv.Itoa(failed),
	}
	l.Log(ctx, e)
}

// Export logs a list export.
func (l *Logger) Export(ctx context.Context, r *http.Request, actorID, resource, format string, rows int) {
	e := base(r, audit.CategoryAdmin, audit.EventExport, true)
	e.ActorID = actorID
	e.Resource = resource
	e.Details = map[string]string{"format": format, "rows": strconv.Itoa(rows)}
	l.Log(ctx, e)
}

// Download logs a file fetched through the console.
func (l *Logger) Download(ctx context.Context, r *http.Request, actorID, resource, targetID, filename string) {
	e := base(r, audit.CategoryAdmin, audit.EventDownload, true)
	e.ActorID = actorID
	e.Resource = resource
	e.TargetID = targetID
	e.Details = map[string]string{"filename": filename}
	l.Log(ctx, e)
}

// PreferencesChanged logs a UI preferences update.
func (l *Logger) PreferencesChanged(ctx context.Context, r *http.Request, userID string) {
	e := base(r, audit.CategoryAdmin, audit.EventPreferencesChanged, true)
	e.ActorID = userID
	e.UserID = userID
	l.Log(ctx, e)
}
