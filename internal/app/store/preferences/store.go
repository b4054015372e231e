// internal/app/store/preferences/store.go
package preferences

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dalemusser/modconsole/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrInvalid is returned by Save for an unknown sidenav color or type.
var ErrInvalid = errors.New("invalid preferences")

// Repository loads and saves one user's UI preferences.
type Repository interface {
	// Load returns the saved preferences, or the defaults when none exist.
	Load(ctx context.Context, userID string) (models.Preferences, error)
	Save(ctx context.Context, userID string, p models.Preferences) error
}

// Validate checks the enum fields of p.
func Validate(p models.Preferences) error {
	if !slices.Contains(models.SidenavColors, p.SidenavColor) {
		return fmt.Errorf("%w: sidenav color %q", ErrInvalid, p.SidenavColor)
	}
	if !slices.Contains(models.SidenavTypes, p.SidenavType) {
		return fmt.Errorf("%w: sidenav type %q", ErrInvalid, p.SidenavType)
	}
	return nil
}

func defaultsFor(userID string) models.Preferences {
	p := models.DefaultPreferences()
	p.UserID = userID
	return p
}

// MongoRepository stores preferences in the ui_preferences collection,
// one document per user_id.
type MongoRepository struct {
	c *mongo.Collection
}

// NewMongo returns a MongoRepository over db.
func NewMongo(db *mongo.Database) *MongoRepository {
	return &MongoRepository{c: db.Collection("ui_preferences")}
}

// EnsureIndexes creates the unique user_id index.
func (s *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
	})
	if err != nil {
		return fmt.Errorf("ui_preferences index: %w", err)
	}
	return nil
}

// Load implements Repository.
func (s *MongoRepository) Load(ctx context.Context, userID string) (models.Preferences, error) {
	var p models.Preferences
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return defaultsFor(userID), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

// Save implements Repository with an upsert.
func (s *MongoRepository) Save(ctx context.Context, userID string, p models.Preferences) error {
	if err := Validate(p); err != nil {
		return err
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"user_id":       userID,
			"sidenav_color": p.SidenavColor,
			"sidenav_type":  p.SidenavType,
			"fixed_navbar":  p.FixedNavbar,
			"mini_sidenav":  p.MiniSidenav,
			"dark_mode":     p.DarkMode,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// MemoryRepository keeps preferences in process. It is used when no
// database is configured and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	byID  map[string]models.Preferences
	saves int
}

// NewMemory returns an empty MemoryRepository.
func NewMemory() *MemoryRepository {
	return &MemoryRepository{byID: map[string]models.Preferences{}}
}

// Load implements Repository.
func (m *MemoryRepository) Load(_ context.Context, userID string) (models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byID[userID]; ok {
		return p, nil
	}
	return defaultsFor(userID), nil
}

// Save implements Repository.
func (m *MemoryRepository) Save(_ context.Context, userID string, p models.Preferences) error {
	if err := Validate(p); err != nil {
		return err
	}
	now := time.Now().UTC()
	p.UserID = userID
	p.UpdatedAt = &now
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[userID] = p
	m.saves++
	return nil
}

// Saves returns how many writes the repository has accepted.
func (m *MemoryRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
