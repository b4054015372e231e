package viewdata

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/auth"
	"github.com/dalemusser/modconsole/internal/app/system/notify"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/domain/models"
)

func TestNavFor_MarksActive(t *testing.T) {
	nav := navFor("/venues/12/dialog/reject")
	var active []string
	for _, it := range nav {
		if it.Active {
			active = append(active, it.Label)
		}
	}
	if len(active) != 1 || active[0] != "Venues" {
		t.Errorf("active = %v", active)
	}
	if Menu[2].Active {
		t.Error("navFor must not modify Menu")
	}
}

func TestNewBaseVM_DrainsToastsAndLoadsPrefs(t *testing.T) {
	repo := preferences.NewMemory()
	p := models.DefaultPreferences()
	p.DarkMode = true
	if err := repo.Save(context.Background(), "7", p); err != nil {
		t.Fatal(err)
	}
	reg := screens.NewRegistry(repo, nil)
	s := reg.Get("sid", "7")
	s.Notices.Notify(notify.New(notify.Success, "Venue approved."))

	r := httptest.NewRequest("GET", "/venues", nil)
	r = auth.WithTestUser(r, &auth.SessionUser{ID: "7", Name: "Ada", Role: "admin", SessionID: "sid"})
	r = screens.WithSession(r, s)

	vm := NewBaseVM(r, "Venues", "/dashboard")
	if !vm.IsLoggedIn || vm.UserName != "Ada" || vm.Title != "Venues" {
		t.Errorf("vm = %+v", vm)
	}
	if len(vm.Toasts) != 1 || vm.Toasts[0].Message != "Venue approved." {
		t.Errorf("toasts = %+v", vm.Toasts)
	}
	if s.Notices.Len() != 0 {
		t.Error("rendering should drain the queue")
	}
	if !vm.Prefs.DarkMode {
		t.Error("saved preferences should be loaded")
	}
}

func TestNewBaseVM_Anonymous(t *testing.T) {
	vm := NewBaseVM(httptest.NewRequest("GET", "/login", nil), "Sign in", "/")
	if vm.IsLoggedIn || vm.Nav != nil || len(vm.Toasts) != 0 {
		t.Errorf("vm = %+v", vm)
	}
	if vm.Prefs.SidenavColor != "info" {
		t.Errorf("anonymous pages use default prefs, got %+v", vm.Prefs)
	}
}
