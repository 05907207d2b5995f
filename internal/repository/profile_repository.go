package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aimd54/hangul-path/internal/models"
)

// ProfileRepository handles profile-related database operations.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate retrieves a profile, creating an empty one on first access.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where(models.Profile{UserID: userID}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create profile %s: %w", userID, err)
	}
	return &profile, nil
}

// UpdateStreak overwrites the streak columns of a profile. No concurrency check: last write wins.
func (r *ProfileRepository) UpdateStreak(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"streak_days":      streakDays,
			"longest_streak":   longestStreak,
			"last_activity_at": lastActivityAt,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update streak for %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update streak for %s: %w", userID, ErrNotFound)
	}
	return nil
}

// UpdateAvatar overwrites the avatar URL of a profile.
func (r *ProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"avatar_url": avatarURL,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update avatar for %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update avatar for %s: %w", userID, ErrNotFound)
	}
	return nil
}

// UpdateDisplayName sets the display name shown on the leaderboard.
func (r *ProfileRepository) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"display_name": displayName,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update display name for %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update display name for %s: %w", userID, ErrNotFound)
	}
	return nil
}
