// Package appstate holds the process-wide application state: the company
// settings and the login sessions. State lives in Redis and the settings row is
// persisted in the database; callers move it with Load and Save.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"logistics_manager/internal/models"
	"logistics_manager/internal/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const settingsKey = "settings:company"

var ErrSessionNotFound = errors.New("session not found")

// Backend is the key-value store state is kept in.
type Backend interface {
	SetSession(ctx context.Context, sessionID string, data *redis.SessionData, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Publish(ctx context.Context, channel, payload string) error
}

// SettingsSource is the durable home of the company settings.
type SettingsSource interface {
	Get(ctx context.Context) (*models.CompanySettings, error)
	Save(ctx context.Context, settings *models.CompanySettings) error
}

// Watcher delivers messages published on the given channels.
type Watcher interface {
	Watch(ctx context.Context, ready func(), fn func(channel, payload string), channels ...string) error
}

type Hook func(ctx context.Context, settings models.CompanySettings)

type Store struct {
	backend    Backend
	source     SettingsSource
	sessionTTL time.Duration
	log        *zap.Logger
	now        func() time.Time
	origin     string

	writeMu  sync.Mutex
	mu       sync.RWMutex
	settings models.CompanySettings
	loaded   bool
	onLoad   []Hook
	onSave   []Hook
}

func New(backend Backend, source SettingsSource, sessionTTL time.Duration, log *zap.Logger) *Store {
	return &Store{
		backend:    backend,
		source:     source,
		sessionTTL: sessionTTL,
		log:        log.Named("appstate"),
		now:        time.Now,
		origin:     uuid.NewString(),
	}
}

// OnLoad registers a hook that runs after every successful Load or Reload.
func (s *Store) OnLoad(h Hook) {
	s.mu.Lock()
	s.onLoad = append(s.onLoad, h)
	s.mu.Unlock()
}

// OnSave registers a hook that runs after every successful Save.
func (s *Store) OnSave(h Hook) {
	s.mu.Lock()
	s.onSave = append(s.onSave, h)
	s.mu.Unlock()
}

// Load reads the settings from Redis, falling back to the database on a miss.
func (s *Store) Load(ctx context.Context) error {
	var settings models.CompanySettings
	err := s.backend.GetJSON(ctx, settingsKey, &settings)
	if err == nil {
		s.apply(ctx, settings)
		return nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.Warn("settings cache unavailable, reading database", zap.Error(err))
	}
	return s.Reload(ctx)
}

// Reload reads the settings from the database and refreshes the Redis copy.
// A missing settings row yields empty settings.
func (s *Store) Reload(ctx context.Context) error {
	stored, err := s.source.Get(ctx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		s.log.Warn("no company settings stored, using defaults")
		stored = &models.CompanySettings{}
	case err != nil:
		return fmt.Errorf("failed to load company settings: %w", err)
	}

	if err := s.backend.SetJSON(ctx, settingsKey, stored, 0); err != nil {
		s.log.Warn("failed to cache company settings", zap.Error(err))
	}
	s.apply(ctx, *stored)
	return nil
}

func (s *Store) apply(ctx context.Context, settings models.CompanySettings) {
	s.mu.Lock()
	s.settings = settings
	s.loaded = true
	hooks := append([]Hook(nil), s.onLoad...)
	s.mu.Unlock()

	for _, h := range hooks {
		h(ctx, settings)
	}
}

// Save persists the in-memory settings to the database and Redis.
func (s *Store) Save(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.persist(ctx, s.Settings())
}

// persist writes settings to the database and Redis and makes them current
// once both writes succeed. Callers hold writeMu.
func (s *Store) persist(ctx context.Context, settings models.CompanySettings) error {
	if err := s.source.Save(ctx, &settings); err != nil {
		return fmt.Errorf("failed to save company settings: %w", err)
	}
	if err := s.backend.SetJSON(ctx, settingsKey, settings, 0); err != nil {
		return fmt.Errorf("failed to cache company settings: %w", err)
	}
	if err := s.backend.Publish(ctx, redis.SettingsChannel, s.origin); err != nil {
		s.log.Warn("failed to announce settings change", zap.Error(err))
	}

	s.mu.Lock()
	s.settings = settings
	s.loaded = true
	hooks := append([]Hook(nil), s.onSave...)
	s.mu.Unlock()

	for _, h := range hooks {
		h(ctx, settings)
	}
	return nil
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() models.CompanySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// UpdateSettings applies fn to a copy of the settings and saves it. The
// current settings are left untouched when saving fails.
func (s *Store) UpdateSettings(ctx context.Context, fn func(*models.CompanySettings)) (models.CompanySettings, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Settings()
	if next.DefaultPriceTableID != nil {
		id := *next.DefaultPriceTableID
		next.DefaultPriceTableID = &id
	}
	fn(&next)
	if err := s.persist(ctx, next); err != nil {
		return models.CompanySettings{}, err
	}
	return s.Settings(), nil
}

// CreateSession opens a session for user and returns its id.
func (s *Store) CreateSession(ctx context.Context, user *models.User) (string, *redis.SessionData, error) {
	now := s.now()
	data := &redis.SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	id := uuid.NewString()
	if err := s.backend.SetSession(ctx, id, data, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}
	return id, data, nil
}

func (s *Store) Session(ctx context.Context, id string) (*redis.SessionData, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}
	data, err := s.backend.GetSession(ctx, id)
	if errors.Is(err, redis.ErrCacheMiss) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if !data.ExpiresAt.IsZero() && s.now().After(data.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return data, nil
}

func (s *Store) EndSession(ctx context.Context, id string) error {
	return s.backend.DeleteSession(ctx, id)
}

// Watch reloads the settings whenever another process saves them. It blocks
// until ctx is done.
func (s *Store) Watch(ctx context.Context, w Watcher, ready func()) error {
	return w.Watch(ctx, ready, func(_, origin string) {
		if origin == s.origin {
			return
		}
		if err := s.Reload(ctx); err != nil {
			s.log.Error("failed to reload settings saved elsewhere", zap.Error(err))
		}
	}, redis.SettingsChannel)
}
