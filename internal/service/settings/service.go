// Package settings manages per-user interface preferences.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// ErrInvalidLanguage is returned for languages without a translation.
var ErrInvalidLanguage = errors.New("unsupported language")

// Store persists settings.
type Store interface {
	Load(ctx context.Context, userID string) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
}

// Update is a partial change; nil fields are left as they are.
type Update struct {
	Language *string `json:"language" binding:"omitempty,oneof=ar ko"`
	Muted    *bool   `json:"muted"`
}

// Service reads and updates settings.
type Service struct {
	store Store
	log   *logger.Logger
}

// NewService creates a new settings service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// Get returns the user's settings, or the defaults.
func (s *Service) Get(ctx context.Context, userID string) (models.Settings, error) {
	settings, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Update applies a partial change and returns the stored result.
func (s *Service) Update(ctx context.Context, userID string, update Update) (models.Settings, error) {
	if update.Language != nil && !models.IsSupportedLanguage(*update.Language) {
		return models.Settings{}, fmt.Errorf("%w: %s", ErrInvalidLanguage, *update.Language)
	}

	settings, err := s.store.Load(ctx, userID)
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	if update.Language != nil {
		settings.Language = *update.Language
	}
	if update.Muted != nil {
		settings.Muted = *update.Muted
	}
	settings.UserID = userID

	if err := s.store.Save(ctx, settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.log.Debug().
		Str("user_id", userID).
		Str("language", settings.Language).
		Bool("muted", settings.Muted).
		Msg("Settings updated")

	return settings, nil
}

// Language returns the user's language, falling back to the default on error.
func (s *Service) Language(ctx context.Context, userID string) string {
	settings, err := s.store.Load(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to load language, using default")
		return models.LanguageArabic
	}
	return settings.Language
}
