// internal/app/store/preferences/settings.go
package preferences

import (
	"context"
	"sync"

	"github.com/dalemusser/modconsole/internal/domain/models"
	"go.uber.org/zap"
)

// Settings is one user's live preferences. It reads from the repository
// once and writes back only when a value changes.
type Settings struct {
	repo   Repository
	userID string
	log    *zap.Logger

	mu      sync.Mutex
	current models.Preferences
	loaded  bool
}

// NewSettings returns a handle for userID. Nothing is read until Get or
// Update is first called.
func NewSettings(repo Repository, userID string, log *zap.Logger) *Settings {
	if log == nil {
		log = zap.NewNop()
	}
	return &Settings{repo: repo, userID: userID, log: log}
}

// Get returns the current preferences. A failed read falls back to the
// defaults and is retried on the next call.
func (s *Settings) Get(ctx context.Context) models.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	return s.current
}

func (s *Settings) loadLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	p, err := s.repo.Load(ctx, s.userID)
	if err != nil {
		s.log.Warn("preferences load failed; using defaults", zap.String("user_id", s.userID), zap.Error(err))
		s.current = defaultsFor(s.userID)
		return
	}
	s.current = p
	s.loaded = true
}

// Update applies fn to a copy of the current preferences and saves the
// result when it differs. It reports whether a write happened.
func (s *Settings) Update(ctx context.Context, fn func(*models.Preferences)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)

	next := s.current
	fn(&next)
	if next.SameSettings(s.current) {
		return false, nil
	}
	if err := s.repo.Save(ctx, s.userID, next); err != nil {
		return false, err
	}
	s.current = next
	return true, nil
}

// Reset restores the defaults, saving only when something differs.
func (s *Settings) Reset(ctx context.Context) (bool, error) {
	return s.Update(ctx, func(p *models.Preferences) {
		d := models.DefaultPreferences()
		d.UserID, d.UpdatedAt = p.UserID, p.UpdatedAt
		*p = d
	})
}
