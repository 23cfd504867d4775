// Package settings keeps the current restaurant settings snapshot in
// memory, backed by persistent storage.
package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"prenota/internal/config"
	"prenota/internal/events"
	"prenota/internal/model"

	"github.com/rs/zerolog"
)

// Repository persists the settings document.
type Repository interface {
	GetSettings(ctx context.Context, defaults *model.Settings) (*model.Settings, error)
	SaveSettings(ctx context.Context, s *model.Settings) error
}

// EventPublisher receives settings change notifications.
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

// Store serves settings snapshots. Snapshots are never mutated after they
// are handed out; updates swap in a new one. The cached snapshot is
// re-read from storage after ttl so other instances' updates are seen.
type Store struct {
	repo      Repository
	defaults  *model.Settings
	publisher EventPublisher
	ttl       time.Duration
	logger    *zerolog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	current  *model.Settings
	loadedAt time.Time
}

func NewStore(repo Repository, defaults *model.Settings, publisher EventPublisher, ttl time.Duration, logger *zerolog.Logger) *Store {
	if defaults == nil {
		defaults = config.DefaultSettings()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "settings").Logger()
	return &Store{
		repo:      repo,
		defaults:  defaults,
		publisher: publisher,
		ttl:       ttl,
		logger:    &l,
		now:       time.Now,
	}
}

// Settings returns the current snapshot.
func (s *Store) Settings(ctx context.Context) (*model.Settings, error) {
	s.mu.RLock()
	current, loadedAt := s.current, s.loadedAt
	s.mu.RUnlock()

	if current != nil && (s.ttl <= 0 || s.now().Sub(loadedAt) < s.ttl) {
		return current, nil
	}

	loaded, err := s.repo.GetSettings(ctx, s.defaults)
	if err != nil {
		if current != nil {
			s.logger.Warn().Err(err).Msg("Settings refresh failed, serving cached snapshot")
			return current, nil
		}
		return nil, fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	s.current = loaded
	s.loadedAt = s.now()
	s.mu.Unlock()
	return loaded, nil
}

// Update validates and stores next, then makes it the current snapshot.
func (s *Store) Update(ctx context.Context, next *model.Settings) error {
	if err := config.ValidateSettings(next); err != nil {
		return err
	}
	if err := s.repo.SaveSettings(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = next
	s.loadedAt = s.now()
	s.mu.Unlock()

	s.logger.Info().Str("mode", string(next.Mode)).Int("tables", len(next.Tables)).Msg("Settings updated")
	if s.publisher != nil {
		if err := s.publisher.PublishJSON(events.SettingsUpdated, next); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish settings update")
		}
	}
	return nil
}

// Apply is a callback for config.WatchSettings: file edits are stored
// like an API update.
func (s *Store) Apply(ctx context.Context) func(*model.Settings) {
	return func(next *model.Settings) {
		if err := s.Update(ctx, next); err != nil {
			s.logger.Error().Err(err).Msg("Failed to apply settings file")
		}
	}
}
