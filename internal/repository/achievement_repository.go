package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/aimd54/hangul-path/internal/models"
)

// LeaderboardRow is one aggregated leaderboard line.
type LeaderboardRow struct {
	UserID       string
	DisplayName  string
	AvatarURL    *string
	StreakDays   int
	Points       int
	Achievements int
}

// AchievementRepository handles unlocked-achievement database operations.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Award records an unlocked achievement for a user.
// Idempotent: returns false without error when the achievement was already unlocked.
func (r *AchievementRepository) Award(ctx context.Context, userID, achievementID string, points int) (bool, error) {
	row := &models.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		Points:        points,
		UnlockedAt:    time.Now(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, fmt.Errorf("failed to award %s to %s: %w", achievementID, userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListByUser retrieves all achievements unlocked by a user, newest first.
func (r *AchievementRepository) ListByUser(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	var rows []models.UserAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements for %s: %w", userID, err)
	}
	return rows, nil
}

// CountHolders returns the number of users who unlocked an achievement.
func (r *AchievementRepository) CountHolders(ctx context.Context, achievementID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Where("achievement_id = ?", achievementID).
		Count(&count).Error
	return count, err
}

// TotalPoints returns the sum of points a user has collected.
func (r *AchievementRepository) TotalPoints(ctx context.Context, userID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&models.UserAchievement{}).
		Select("COALESCE(SUM(points), 0)").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum points for %s: %w", userID, err)
	}
	return total, nil
}

// Leaderboard ranks profiles by points collected since the given time, then by current streak.
// A zero since counts every unlock.
func (r *AchievementRepository) Leaderboard(ctx context.Context, since time.Time, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := r.db.WithContext(ctx).
		Table("profiles").
		Select("profiles.user_id, profiles.display_name, profiles.avatar_url, profiles.streak_days, " +
			"COALESCE(SUM(user_achievements.points), 0) AS points, COUNT(user_achievements.id) AS achievements").
		Joins("LEFT JOIN user_achievements ON user_achievements.user_id = profiles.user_id "+
			"AND user_achievements.unlocked_at >= ?", since).
		Group("profiles.user_id, profiles.display_name, profiles.avatar_url, profiles.streak_days").
		Order("points DESC, profiles.streak_days DESC, profiles.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	return rows, nil
}
