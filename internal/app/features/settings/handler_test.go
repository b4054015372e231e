package settings

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/modconsole/internal/app/features/errors"
	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/testutil"
	"go.uber.org/zap"
)

type fixture struct {
	h    *Handler
	repo *preferences.MemoryRepository
	reg  *screens.Registry
	vm   settingsVM
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repo: preferences.NewMemory()}
	f.reg = screens.NewRegistry(f.repo, zap.NewNop())
	f.h = NewHandler(f.reg, nil, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	f.h.render = func(w http.ResponseWriter, r *http.Request, name string, data any) {
		f.vm = data.(settingsVM)
	}
	return f
}

func (f *fixture) post(target string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := testutil.NewFormRequest(target, form.Encode(), testutil.AdminUser())
	switch target {
	case "/settings/reset":
		f.reg.Attach(http.HandlerFunc(f.h.HandleReset)).ServeHTTP(rec, req)
	default:
		f.reg.Attach(http.HandlerFunc(f.h.HandleSettings)).ServeHTTP(rec, req)
	}
	return rec
}

func (f *fixture) notices() []notify.Notification {
	u := testutil.AdminUser()
	return f.reg.Get(u.SessionID, u.ID).Notices.Drain()
}

func TestServeSettings_ShowsDefaults(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	req := testutil.NewAuthenticatedRequest("GET", "/settings", testutil.AdminUser())
	f.reg.Attach(http.HandlerFunc(f.h.ServeSettings)).ServeHTTP(rec, req)

	if f.vm.Current.SidenavColor != "info" || f.vm.Current.SidenavType != "dark" || !f.vm.Current.FixedNavbar {
		t.Errorf("Current = %+v, want defaults", f.vm.Current)
	}
	if len(f.vm.Colors) == 0 || len(f.vm.Types) == 0 {
		t.Error("choices missing")
	}
}

func TestHandleSettings_SavesChange(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/settings", url.Values{
		"sidenav_color": {"success"},
		"sidenav_type":  {"white"},
		"fixed_navbar":  {"on"},
		"dark_mode":     {"on"},
	})

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/settings" {
		t.Fatalf("status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	if f.repo.Saves() != 1 {
		t.Errorf("saves = %d, want 1", f.repo.Saves())
	}
	p, _ := f.repo.Load(t.Context(), testutil.AdminUser().ID)
	if p.SidenavColor != "success" || p.SidenavType != "white" || !p.DarkMode || p.MiniSidenav {
		t.Errorf("saved = %+v", p)
	}
	if n := f.notices(); len(n) != 1 || n[0].Color != notify.Success {
		t.Errorf("notices = %+v", n)
	}
}

func TestHandleSettings_UnchangedDoesNotWrite(t *testing.T) {
	f := newFixture(t)

	f.post("/settings", url.Values{
		"sidenav_color": {"info"},
		"sidenav_type":  {"dark"},
		"fixed_navbar":  {"on"},
	})

	if f.repo.Saves() != 0 {
		t.Errorf("saves = %d, want 0", f.repo.Saves())
	}
	if n := f.notices(); len(n) != 0 {
		t.Errorf("notices = %+v, want none", n)
	}
}

func TestHandleSettings_InvalidValueRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/settings", url.Values{"sidenav_color": {"pink"}, "sidenav_type": {"dark"}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if f.vm.Error == "" || f.vm.Current.SidenavColor != "pink" {
		t.Errorf("vm = %+v", f.vm)
	}
	if f.repo.Saves() != 0 {
		t.Errorf("saves = %d, want 0", f.repo.Saves())
	}
}

func TestHandleReset(t *testing.T) {
	f := newFixture(t)
	f.post("/settings", url.Values{"sidenav_color": {"warning"}, "sidenav_type": {"dark"}, "fixed_navbar": {"on"}})
	f.notices()

	f.post("/settings/reset", url.Values{})

	p, _ := f.repo.Load(t.Context(), testutil.AdminUser().ID)
	if p.SidenavColor != "info" {
		t.Errorf("after reset color = %q, want info", p.SidenavColor)
	}
	if f.repo.Saves() != 2 {
		t.Errorf("saves = %d, want 2", f.repo.Saves())
	}
}

func TestServeSettings_Unauthenticated(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("GET", "/settings", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	f.h.ServeSettings(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status %d, want 303", rec.Code)
	}
}
