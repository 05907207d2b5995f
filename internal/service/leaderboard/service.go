// Package leaderboard provides leaderboard and ranking services.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/internal/repository"
	"github.com/aimd54/hangul-path/pkg/logger"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	// rankScanLimit bounds the rows read to place a single user.
	rankScanLimit = 1000
)

// AchievementRepository interface for achievement aggregation.
type AchievementRepository interface {
	Leaderboard(ctx context.Context, since time.Time, limit int) ([]repository.LeaderboardRow, error)
	TotalPoints(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserAchievement, error)
}

// ProfileStore interface for profile operations.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Profile, error)
}

// Entry represents a single entry in a leaderboard.
type Entry struct {
	Rank         int     `json:"rank"`
	UserID       string  `json:"user_id"`
	DisplayName  string  `json:"display_name"`
	AvatarURL    *string `json:"avatar_url,omitempty"`
	StreakDays   int     `json:"streak_days"`
	Points       int     `json:"points"`
	Achievements int     `json:"achievements"`
}

// UserStats summarizes a learner's progress.
type UserStats struct {
	UserID        string `json:"user_id"`
	Points        int    `json:"points"`
	Achievements  int    `json:"achievements"`
	StreakDays    int    `json:"streak_days"`
	LongestStreak int    `json:"longest_streak"`
	GlobalRank    int    `json:"global_rank"` // 0 when outside the ranked window
}

// Service handles leaderboard generation and user statistics.
type Service struct {
	achievementRepo AchievementRepository
	profiles        ProfileStore
	now             func() time.Time
	log             *logger.Logger
}

// NewService creates a new leaderboard service with concrete repository types.
func NewService(achievementRepo *repository.AchievementRepository, profiles repository.ProfileStore, log *logger.Logger) *Service {
	return NewServiceWithInterfaces(achievementRepo, profiles, log)
}

// NewServiceWithInterfaces creates a new leaderboard service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(achievementRepo AchievementRepository, profiles ProfileStore, log *logger.Logger) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		profiles:        profiles,
		now:             time.Now,
		log:             log,
	}
}

// GetLeaderboard returns learners ranked by points earned in the period, ties broken by streak.
func (s *Service) GetLeaderboard(ctx context.Context, period string, limit int) ([]Entry, error) {
	limit = clampLimit(limit)

	rows, err := s.achievementRepo.Leaderboard(ctx, calculatePeriodStart(period, s.now()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, Entry{
			Rank:         i + 1,
			UserID:       row.UserID,
			DisplayName:  row.DisplayName,
			AvatarURL:    row.AvatarURL,
			StreakDays:   row.StreakDays,
			Points:       row.Points,
			Achievements: row.Achievements,
		})
	}

	return entries, nil
}

// GetUserRank returns the all-time rank of a user, or 0 when not ranked.
func (s *Service) GetUserRank(ctx context.Context, userID string) (int, error) {
	rows, err := s.achievementRepo.Leaderboard(ctx, time.Time{}, rankScanLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	for i, row := range rows {
		if row.UserID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// GetUserStats returns the progress summary for a user.
func (s *Service) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	points, err := s.achievementRepo.TotalPoints(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}

	unlocked, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get achievements: %w", err)
	}

	stats := &UserStats{
		UserID:        userID,
		Points:        points,
		Achievements:  len(unlocked),
		StreakDays:    profile.StreakDays,
		LongestStreak: profile.LongestStreak,
	}

	rank, err := s.GetUserRank(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to compute user rank")
	}
	stats.GlobalRank = rank

	return stats, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	default:
		return limit
	}
}

// calculatePeriodStart returns the earliest unlock time counted for a period.
func calculatePeriodStart(period string, now time.Time) time.Time {
	switch period {
	case "day":
		return now.Add(-24 * time.Hour)
	case "week":
		return now.Add(-7 * 24 * time.Hour)
	case "month":
		return now.Add(-30 * 24 * time.Hour)
	default:
		// all_time
		return time.Time{}
	}
}
