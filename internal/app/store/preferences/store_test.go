package preferences_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/domain/models"
	"github.com/dalemusser/modconsole/internal/testutil"
	"go.uber.org/zap"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.Preferences)
		wantErr bool
	}{
		{"defaults", func(*models.Preferences) {}, false},
		{"every color", func(p *models.Preferences) { p.SidenavColor = "error" }, false},
		{"unknown color", func(p *models.Preferences) { p.SidenavColor = "purple" }, true},
		{"unknown type", func(p *models.Preferences) { p.SidenavType = "glass" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.DefaultPreferences()
			tt.mutate(&p)
			err := preferences.Validate(p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, preferences.ErrInvalid) {
				t.Errorf("error should wrap ErrInvalid: %v", err)
			}
		})
	}
}

func TestMemory_DefaultsAndSave(t *testing.T) {
	repo := preferences.NewMemory()
	ctx := context.Background()

	p, err := repo.Load(ctx, "7")
	if err != nil {
		t.Fatal(err)
	}
	if p.UserID != "7" || !p.SameSettings(models.DefaultPreferences()) {
		t.Errorf("Load on empty repo = %+v", p)
	}

	p.DarkMode = true
	if err := repo.Save(ctx, "7", p); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.Load(ctx, "7")
	if !got.DarkMode || got.UpdatedAt == nil {
		t.Errorf("saved prefs = %+v", got)
	}

	p.SidenavType = "neon"
	if err := repo.Save(ctx, "7", p); !errors.Is(err, preferences.ErrInvalid) {
		t.Errorf("Save invalid = %v", err)
	}
}

func TestSettings_WritesOnlyOnChange(t *testing.T) {
	repo := preferences.NewMemory()
	s := preferences.NewSettings(repo, "7", zap.NewNop())
	ctx := context.Background()

	if got := s.Get(ctx); got.SidenavColor != "info" {
		t.Errorf("initial color = %q", got.SidenavColor)
	}

	changed, err := s.Update(ctx, func(p *models.Preferences) { p.SidenavColor = "info" })
	if err != nil || changed {
		t.Errorf("unchanged update: changed=%v err=%v", changed, err)
	}
	if repo.Saves() != 0 {
		t.Errorf("expected no writes, got %d", repo.Saves())
	}

	changed, err = s.Update(ctx, func(p *models.Preferences) { p.MiniSidenav = true })
	if err != nil || !changed {
		t.Fatalf("update: changed=%v err=%v", changed, err)
	}
	if repo.Saves() != 1 || !s.Get(ctx).MiniSidenav {
		t.Errorf("saves=%d prefs=%+v", repo.Saves(), s.Get(ctx))
	}

	changed, err = s.Reset(ctx)
	if err != nil || !changed || s.Get(ctx).MiniSidenav {
		t.Errorf("reset: changed=%v err=%v prefs=%+v", changed, err, s.Get(ctx))
	}
}

func TestSettings_InvalidUpdateKeepsCurrent(t *testing.T) {
	s := preferences.NewSettings(preferences.NewMemory(), "7", nil)
	ctx := context.Background()

	_, err := s.Update(ctx, func(p *models.Preferences) { p.SidenavColor = "chartreuse" })
	if !errors.Is(err, preferences.ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
	if s.Get(ctx).SidenavColor != "info" {
		t.Error("failed update must not change the current value")
	}
}

type failingRepo struct{ preferences.Repository }

func (failingRepo) Load(context.Context, string) (models.Preferences, error) {
	return models.Preferences{}, errors.New("db down")
}

func TestSettings_LoadFailureUsesDefaults(t *testing.T) {
	s := preferences.NewSettings(failingRepo{}, "7", zap.NewNop())
	if got := s.Get(context.Background()); !got.SameSettings(models.DefaultPreferences()) {
		t.Errorf("got %+v", got)
	}
}

func TestMongoRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := preferences.NewMongo(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := repo.EnsureIndexes(ctx); err != nil {
		t.Fatal(err)
	}

	p, err := repo.Load(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if !p.SameSettings(models.DefaultPreferences()) {
		t.Errorf("defaults expected, got %+v", p)
	}

	p.SidenavColor = "success"
	p.DarkMode = true
	for i := 0; i < 2; i++ {
		if err := repo.Save(ctx, "42", p); err != nil {
			t.Fatalf("Save #%d: %v", i+1, err)
		}
	}

	got, err := repo.Load(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if got.SidenavColor != "success" || !got.DarkMode || got.UpdatedAt == nil {
		t.Errorf("loaded = %+v", got)
	}
	n, err := db.Collection("ui_preferences").CountDocuments(ctx, map[string]any{"user_id": "42"})
	if err != nil || n != 1 {
		t.Errorf("expected one document, got %d (%v)", n, err)
	}
}
