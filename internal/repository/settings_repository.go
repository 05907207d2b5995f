package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/aimd54/hangul-path/internal/models"
)

// SettingsRepository persists user preferences.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns the stored settings, or the defaults when the user never saved any.
func (r *SettingsRepository) Load(ctx context.Context, userID string) (models.Settings, error) {
	var settings models.Settings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(userID), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings for %s: %w", userID, err)
	}
	return settings, nil
}

// Save upserts the settings of a user.
func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	settings.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"language", "muted", "updated_at"}),
		}).
		Create(&settings).Error
	if err != nil {
		return fmt.Errorf("failed to save settings for %s: %w", settings.UserID, err)
	}
	return nil
}
