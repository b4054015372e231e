// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/modconsole/internal/app/features/auditlog"
	"github.com/dalemusser/modconsole/internal/app/features/coaches"
	dashboardfeature "github.com/dalemusser/modconsole/internal/app/features/dashboard"
	"github.com/dalemusser/modconsole/internal/app/features/documents"
	errorsfeature "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/features/events"
	healthfeature "github.com/dalemusser/modconsole/internal/app/features/health"
	loginfeature "github.com/dalemusser/modconsole/internal/app/features/login"
	logoutfeature "github.com/dalemusser/modconsole/internal/app/features/logout"
	settingsfeature "github.com/dalemusser/modconsole/internal/app/features/settings"
	"github.com/dalemusser/modconsole/internal/app/features/shared/screen"
	"github.com/dalemusser/modconsole/internal/app/features/teams"
	"github.com/dalemusser/modconsole/internal/app/features/tickets"
	"github.com/dalemusser/modconsole/internal/app/features/users"
	"github.com/dalemusser/modconsole/internal/app/features/venues"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/authz"
	"github.com/dalemusser/modconsole/internal/app/system/navigation"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// Every request is traced, CSRF-checked, and carries the signed-in user and
// that user's screen session. Sign-in, sign-out, health, and the error pages
// are public; everything else requires an administrator.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	csrfKey, err := auth.CSRFKey(appCfg.SessionKey)
	if err != nil {
		return nil, err
	}

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	policy := authz.NewPolicy(appCfg.AdminRoleIDs)
	svc := deps.svc
	be := deps.Backend

	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "modconsole")
	})
	if !secure {
		r.Use(plaintextCSRF)
	}
	r.Use(csrf.Protect(csrfKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("csrf check failed", zap.String("path", r.URL.Path), zap.Error(csrf.FailureReason(r)))
			errorsfeature.RenderForbidden(w, r, "Your form expired. Please reload the page and try again.", "")
		})),
	))

	// Global auth middleware: loads SessionUser into context if signed in,
	// then that session's screen state.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(svc.screens.Attach)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, be, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, navigation.DefaultLanding, http.StatusSeeOther)
	})

	// Authentication
	loginHandler := loginfeature.NewHandler(be, sessionMgr, policy, svc.limiter, svc.audit, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, be, svc.screens, svc.audit, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Administrator area
	r.Group(func(r chi.Router) {
		r.Use(authz.RequireAdmin(sessionMgr, policy))

		dashboardHandler := dashboardfeature.NewHandler(be, sessionMgr, svc.screens, svc.audit, logger)
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

		settingsHandler := settingsfeature.NewHandler(svc.screens, svc.audit, errLog, logger)
		r.Route("/settings", settingsHandler.MountRoutes)

		var auditEvents auditlogfeature.Events
		if svc.events != nil {
			auditEvents = svc.events
		}
		auditHandler := auditlogfeature.NewHandler(auditEvents, errLog, logger)
		r.Mount("/audit", auditlogfeature.Routes(auditHandler))

		mountScreen(r, users.Definition(), deps, sessionMgr, errLog, logger)
		mountScreen(r, venues.Definition(), deps, sessionMgr, errLog, logger)
		mountScreen(r, events.Definition(), deps, sessionMgr, errLog, logger)
		mountScreen(r, documents.Definition(), deps, sessionMgr, errLog, logger)
		mountScreen(r, teams.Definition(), deps, sessionMgr, errLog, logger)
		mountScreen(r, coaches.Definition(), deps, sessionMgr, errLog, logger)
		mountScreen(r, tickets.Definition(), deps, sessionMgr, errLog, logger)
	})

	return r, nil
}

// mountScreen mounts one resource screen at its definition's path.
func mountScreen[T any](r chi.Router, def screen.Definition[T], deps DBDeps, sm *auth.SessionManager, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) {
	h := screen.NewHandler(def, deps.Backend, sm, deps.svc.screens, deps.svc.audit, errLog, logger)
	r.Mount(def.Path, screen.Routes(h))
}

// plaintextCSRF marks non-TLS requests as plain HTTP so gorilla/csrf skips
// its HTTPS-only Referer check in dev.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			r = csrf.PlaintextHTTPRequest(r)
		}
		next.ServeHTTP(w, r)
	})
}
