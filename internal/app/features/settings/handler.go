// internal/app/features/settings/handler.go
package settings

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/limits"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/dalemusser/modconsole/internal/app/system/viewdata"
	"github.com/dalemusser/modconsole/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler owns the UI preferences screen.
type Handler struct {
	Screens *screens.Registry
	Audit   *auditlog.Logger
	ErrLog  *uierrors.ErrorLogger
	Log     *zap.Logger

	render func(w http.ResponseWriter, r *http.Request, name string, data any)
}

// NewHandler constructs a Handler over the session registry.
func NewHandler(reg *screens.Registry, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Screens: reg,
		Audit:   audit,
		ErrLog:  errLog,
		Log:     logger,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

type settingsVM struct {
	viewdata.BaseVM
	Current models.Preferences
	Colors  []string
	Types   []string
	Error   string
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*screens.Session, *auth.SessionUser, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		auth.RedirectToLogin(w, r)
		return nil, nil, false
	}
	s, ok := screens.FromRequest(r)
	if !ok {
		s = h.Screens.Get(u.SessionID, u.ID)
	}
	return s, u, true
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request, s *screens.Session, current models.Preferences, errMsg string) {
	vm := settingsVM{
		BaseVM:  viewdata.NewBaseVM(r, "Settings", "/dashboard"),
		Current: current,
		Colors:  models.SidenavColors,
		Types:   models.SidenavTypes,
		Error:   errMsg,
	}
	if _, attached := screens.FromRequest(r); !attached {
		vm.Toasts = s.Notices.Drain()
	}
	h.render(w, r, "settings", vm)
}

// ServeSettings displays the preferences form.
// GET /settings
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load preferences")
	defer cancel()
	h.show(w, r, s, s.Prefs.Get(ctx), "")
}

// HandleSettings saves the submitted preferences. Nothing is written when
// no value changed.
// POST /settings
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := limits.ParseForm(w, r); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse settings form failed", err, "Invalid form data.", "/settings")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "save preferences")
	defer cancel()

	var submitted models.Preferences
	changed, err := s.Prefs.Update(ctx, func(p *models.Preferences) {
		p.SidenavColor = r.PostFormValue("sidenav_color")
		p.SidenavType = r.PostFormValue("sidenav_type")
		p.FixedNavbar = checked(r, "fixed_navbar")
		p.MiniSidenav = checked(r, "mini_sidenav")
		p.DarkMode = checked(r, "dark_mode")
		submitted = *p
	})
	if errors.Is(err, preferences.ErrInvalid) {
		w.WriteHeader(http.StatusBadRequest)
		h.show(w, r, s, submitted, "Choose one of the listed sidenav colors and types.")
		return
	}
	if err != nil {
		h.Log.Error("save preferences failed", zap.String("user_id", u.ID), zap.Error(err))
		s.Notices.Notify(notify.New(notify.Error, "Settings could not be saved."))
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	if changed {
		h.Audit.PreferencesChanged(ctx, r, u.ID)
		s.Notices.Notify(notify.New(notify.Success, "Settings saved."))
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// HandleReset restores the default preferences.
// POST /settings/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	s, u, ok := h.session(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "reset preferences")
	defer cancel()

	changed, err := s.Prefs.Reset(ctx)
	switch {
	case err != nil:
		h.Log.Error("reset preferences failed", zap.String("user_id", u.ID), zap.Error(err))
		s.Notices.Notify(notify.New(notify.Error, "Settings could not be reset."))
	case changed:
		h.Audit.PreferencesChanged(ctx, r, u.ID)
		s.Notices.Notify(notify.New(notify.Success, "Settings restored to defaults."))
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

func checked(r *http.Request, key string) bool {
	switch r.PostFormValue(key) {
	case "on", "true", "1":
		return true
	}
	return false
}
