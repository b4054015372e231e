// internal/app/features/shared/screen/handler.go
package screen

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/listing"
	"github.com/dalemusser/modconsole/internal/app/system/navigation"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/app/system/search"
	"github.com/dalemusser/modconsole/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// bodyTarget is the element id HTMX swaps for list refreshes and actions.
const bodyTarget = "screen-body"

// DefaultMaxExportRows caps how many rows one export pulls from the backend.
const DefaultMaxExportRows = 5000

// Handler serves one moderation screen for records of type T.
type Handler[T any] struct {
	Def      Definition[T]
	Backend  *backend.Client
	Sessions *auth.SessionManager
	Screens  *screens.Registry
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger

	MaxExportRows int

	render  func(w http.ResponseWriter, r *http.Request, name string, data any)
	snippet func(w http.ResponseWriter, name string, data any)
	now     func() time.Time
}

// NewHandler constructs the handler for def.
func NewHandler[T any](
	def Definition[T],
	be *backend.Client,
	sm *auth.SessionManager,
	reg *screens.Registry,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler[T]{
		Def:           def,
		Backend:       be,
		Sessions:      sm,
		Screens:       reg,
		Audit:         audit,
		ErrLog:        errLog,
		Log:           logger.With(zap.String("screen", def.Name)),
		MaxExportRows: DefaultMaxExportRows,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
		snippet: func(w http.ResponseWriter, name string, data any) {
			templates.RenderSnippet(w, name, data)
		},
		now: time.Now,
	}
}

// state is the per-session state of one screen.
type state[T any] struct {
	ctrl  *listing.Controller[T]
	res   backend.Resource
	stats *statsBox
}

// statsBox holds the verification counts shown above the table.
type statsBox struct {
	load func(ctx context.Context) (models.VerificationStats, error)
	log  *zap.Logger

	mu     sync.Mutex
	stats  models.VerificationStats
	err    string
	loaded bool
}

func (b *statsBox) reload(ctx context.Context) {
	s, err := b.load(ctx)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loaded = true
	if err != nil {
		b.log.Warn("stats load failed", zap.Error(err))
		b.err = notify.MessageFrom(err, "Failed to load statistics.")
		return
	}
	b.stats, b.err = s, ""
}

func (b *statsBox) get() (models.VerificationStats, string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats, b.err, b.loaded
}

// session resolves the signed-in user and their screen session. It answers
// the request itself and returns ok=false when nobody is signed in.
func (h *Handler[T]) session(w http.ResponseWriter, r *http.Request) (*screens.Session, *auth.SessionUser, bool) {
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

func (h *Handler[T]) state(s *screens.Session, u *auth.SessionUser) *state[T] {
	return screens.Value(s, "screen:"+h.Def.Name, func() *state[T] {
		res := h.Backend.WithToken(u.Token).Resource(h.Def.resource())
		st := &state[T]{res: res}
		var hooks []func(context.Context)
		if h.Def.Stats {
			st.stats = &statsBox{
				log: h.Log,
				load: func(ctx context.Context) (models.VerificationStats, error) {
					raw, err := res.Stats(ctx)
					if err != nil {
						return models.VerificationStats{}, err
					}
					return models.VerificationStatsFromRaw(raw), nil
				},
			}
			hooks = append(hooks, st.stats.reload)
		}
		st.ctrl = listing.New(listing.Config[T]{
			Name:          h.Def.Name,
			Source:        backend.Source(res, h.Def.Map),
			Mutator:       res.Mutator(),
			ID:            h.Def.ID,
			Filters:       h.Def.Filters,
			Actions:       h.Def.Actions,
			Notifier:      s.Notices,
			AfterMutation: hooks,
			Logger:        h.Log,
		})
		return st
	})
}

// signedOut ends the console session when the backend rejected the token.
// It reports whether it answered the request.
func (h *Handler[T]) signedOut(w http.ResponseWriter, r *http.Request, u *auth.SessionUser, err error) bool {
	return Revoked(w, r, h.Sessions, h.Screens, h.Audit, h.Log, u, err)
}

// signedOutAfterMutation is signedOut for action and bulk failures. Only a
// 401 ends the session; a 403 there refuses that change and goes through
// the normal failure path.
func (h *Handler[T]) signedOutAfterMutation(w http.ResponseWriter, r *http.Request, u *auth.SessionUser, err error) bool {
	return backend.IsUnauthenticated(err) && h.signedOut(w, r, u, err)
}

// Revoked signs u out when err is a backend 401 or 403: the cookie is
// cleared, the screen session dropped, and the browser sent to the login
// page. It reports whether it answered the request.
func Revoked(w http.ResponseWriter, r *http.Request, sm *auth.SessionManager, reg *screens.Registry,
	audit *auditlog.Logger, log *zap.Logger, u *auth.SessionUser, err error) bool {
	if err == nil || !backend.IsUnauthorized(err) {
		return false
	}
	log.Info("backend rejected session token, signing out",
		zap.String("user_id", u.ID),
		zap.Int("status", backend.StatusOf(err)))
	if sm != nil {
		if _, lerr := sm.Logout(w, r); lerr != nil {
			log.Warn("clear session cookie failed", zap.Error(lerr))
		}
	}
	if reg != nil {
		reg.Drop(u.SessionID)
	}
	audit.SessionRevoked(r.Context(), r, u.ID, backend.StatusOf(err))
	auth.RedirectToLogin(w, r)
	return true
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// respond answers a state-changing request: HTMX gets the refreshed body
// with its toasts, plain forms are sent back to the list.
func (h *Handler[T]) respond(w http.ResponseWriter, r *http.Request, st *state[T]) {
	if isHTMX(r) {
		data := h.listData(r, st)
		data.Fragment = true
		h.snippet(w, "screen_body", data)
		return
	}
	http.Redirect(w, r, h.backURL(r, st), http.StatusSeeOther)
}

// backURL is the list page to return to after a plain form post.
func (h *Handler[T]) backURL(r *http.Request, st *state[T]) string {
	return navigation.SafeBackURL(r, navigation.BackURLOptions{
		AllowedPrefix:    h.Def.Path,
		ExcludedSubpaths: []string{"/dialog", "/select", "/bulk", "/download", "/export"},
		Fallback:         navigation.ListURL(h.Def.Path, stateQuery(st.ctrl.Snapshot(), 0).Encode()),
	})
}

// applyQuery copies the list state carried by the URL onto the controller.
// An absent filter key means All. It reports whether anything changed.
func applyQuery[T any](c *listing.Controller[T], q url.Values) bool {
	changed := false
	for _, f := range c.Filters() {
		if c.SetFilter(f.Key, q.Get(f.Key)) {
			changed = true
		}
	}
	if c.SetQuery(q.Get("q")) {
		changed = true
	}
	if c.SetSort(q.Get("sort_by"), q.Get("sort_order")) {
		changed = true
	}
	return changed
}

// stateQuery encodes the list state of snap as URL parameters. A page of 0
// uses the snapshot's page.
func stateQuery[T any](snap listing.Snapshot[T], page int) url.Values {
	v := url.Values{}
	for key, val := range snap.Filters {
		if !search.Unconstrained(val) {
			v.Set(key, val)
		}
	}
	if snap.Query != "" {
		v.Set("q", snap.Query)
	}
	if snap.SortBy != "" {
		v.Set("sort_by", snap.SortBy)
		if snap.SortOrder != "" {
			v.Set("sort_order", snap.SortOrder)
		}
	}
	if page == 0 {
		page = snap.Page
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	return v
}
