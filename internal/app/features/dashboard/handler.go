// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/dalemusser/modconsole/internal/app/system/viewdata"
	"github.com/dalemusser/modconsole/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type Handler struct {
	Backend  *backend.Client
	Sessions *auth.SessionManager
	Screens  *screens.Registry
	Audit    *auditlog.Logger
	Log      *zap.Logger

	render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

func NewHandler(be *backend.Client, sm *auth.SessionManager, reg *screens.Registry, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Backend:  be,
		Sessions: sm,
		Screens:  reg,
		Audit:    audit,
		Log:      logger,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

type card struct {
	Label  string
	Value  string
	Detail string
	Path   string
}

type dashboardData struct {
	viewdata.BaseVM
	Cards []card
	Error string
}

func cards(s models.DashboardStats) []card {
	pending := func(n *int) string {
		if n == nil {
			return ""
		}
		return models.DisplayInt(n) + " pending"
	}
	active := ""
	if s.ActiveUsers != nil {
		active = models.DisplayInt(s.ActiveUsers) + " active"
	}
	return []card{
		{Label: "Users", Value: models.DisplayInt(s.Users), Detail: active, Path: "/users"},
		{Label: "Venues", Value: models.DisplayInt(s.Venues), Detail: pending(s.PendingVenues), Path: "/venues"},
		{Label: "Events", Value: models.DisplayInt(s.Events), Path: "/events"},
		{Label: "Documents", Value: models.DisplayInt(s.Documents), Detail: pending(s.PendingDocs), Path: "/documents"},
		{Label: "Teams", Value: models.DisplayInt(s.Teams), Path: "/teams"},
		{Label: "Coaches", Value: models.DisplayInt(s.Coaches), Path: "/coaches"},
		{Label: "Open tickets", Value: models.DisplayInt(s.OpenTickets), Path: "/tickets"},
	}
}

// ServeDashboard shows the backend totals. A failed load renders the cards
// with placeholders and the error inline.
// GET /dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		auth.RedirectToLogin(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "dashboard stats")
	defer cancel()

	stats, err := h.Backend.WithToken(u.Token).Stats(ctx)
	if screen.Revoked(w, r, h.Sessions, h.Screens, h.Audit, h.Log, u, err) {
		return
	}

	data := dashboardData{BaseVM: viewdata.NewBaseVM(r, "Dashboard", "/dashboard")}
	if err != nil {
		h.Log.Warn("dashboard stats failed", zap.Error(err))
		data.Error = notify.MessageFrom(err, "Failed to load dashboard statistics.")
		stats = models.DashboardStats{}
	}
	data.Cards = cards(stats)
	h.render(w, r, "dashboard", data)
}
