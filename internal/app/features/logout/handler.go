// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Backend    *backend.Client
	Screens    *screens.Registry
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, be *backend.Client, reg *screens.Registry, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		Backend:    be,
		Screens:    reg,
		Audit:      audit,
	}
}

// ServeLogout revokes the backend token, clears the session cookie, and
// drops the session's screen state.
// GET, POST /logout
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	u, signedIn := auth.CurrentUser(r)

	if signedIn && u.Token != "" && h.Backend != nil {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "backend logout")
		if err := h.Backend.WithToken(u.Token).Logout(ctx); err != nil {
			// The local session ends regardless.
			h.Log.Info("backend logout failed", zap.Error(err))
		}
		cancel()
	}

	sid, err := h.SessionMgr.Logout(w, r)
	if err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}
	if h.Screens != nil {
		if sid != "" {
			h.Screens.Drop(sid)
		}
		if signedIn && u.SessionID != "" {
			h.Screens.Drop(u.SessionID)
		}
	}
	if signedIn {
		h.Audit.Logout(r.Context(), r, u.ID)
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
