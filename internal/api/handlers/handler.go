// Package handlers provides the REST API handlers of the learning backend.
// It exposes endpoints for profiles, streaks, achievements, leaderboards, settings and the AI tutor.
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/i18n"
	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/internal/service/achievements"
	"github.com/aimd54/hangul-path/internal/service/chat"
	"github.com/aimd54/hangul-path/internal/service/leaderboard"
	"github.com/aimd54/hangul-path/internal/service/profile"
	"github.com/aimd54/hangul-path/internal/service/settings"
	"github.com/aimd54/hangul-path/internal/service/streak"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// ProfileService interface for profile operations.
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID string, avatar profile.Avatar) (*models.Profile, error)
	UpdateDisplayName(ctx context.Context, userID, displayName string) (*models.Profile, error)
}

// StreakService interface for streak operations.
type StreakService interface {
	GetStatus(ctx context.Context, userID string) (*streak.Status, error)
	RecordActivity(ctx context.Context, userID string) (*streak.Status, error)
}

// AchievementService interface for achievement operations.
type AchievementService interface {
	Unlock(ctx context.Context, userID, id string) (bool, error)
	Catalog(ctx context.Context, userID, lang string) ([]achievements.Entry, error)
	Current(userID, lang string) achievements.Popup
	Dismiss(userID string)
}

// LeaderboardService interface for leaderboard operations.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, period string, limit int) ([]leaderboard.Entry, error)
	GetUserStats(ctx context.Context, userID string) (*leaderboard.UserStats, error)
}

// SettingsService interface for settings operations.
type SettingsService interface {
	Get(ctx context.Context, userID string) (models.Settings, error)
	Update(ctx context.Context, userID string, update settings.Update) (models.Settings, error)
	Language(ctx context.Context, userID string) string
}

// ChatService interface for the AI tutor relay.
type ChatService interface {
	Reply(ctx context.Context, userID string, req chat.Request) (string, error)
}

// Services groups the dependencies of Handler.
type Services struct {
	Profiles     ProfileService
	Streaks      StreakService
	Achievements AchievementService
	Leaderboard  LeaderboardService
	Settings     SettingsService
	Chat         ChatService
}

// Handler handles learner API requests.
type Handler struct {
	profiles     ProfileService
	streaks      StreakService
	achievements AchievementService
	leaderboard  LeaderboardService
	settings     SettingsService
	chat         ChatService
	log          *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s Services, log *logger.Logger) *Handler {
	return &Handler{
		profiles:     s.Profiles,
		streaks:      s.Streaks,
		achievements: s.Achievements,
		leaderboard:  s.Leaderboard,
		settings:     s.Settings,
		chat:         s.Chat,
		log:          log,
	}
}

// language picks the ?lang= override when supported, else the user's saved language.
func (h *Handler) language(c *gin.Context) string {
	if lang := c.Query("lang"); models.IsSupportedLanguage(lang) {
		return lang
	}
	return h.settings.Language(c.Request.Context(), middleware.UserID(c))
}

// localized returns the message for key in the caller's language.
func (h *Handler) localized(c *gin.Context, key string) string {
	return i18n.Message(h.language(c), key)
}

// parseLimit extracts and validates the limit query parameter.
func (h *Handler) parseLimit(c *gin.Context, defaultLimit int) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter: %s", limitStr)
	}

	if limit < 1 {
		return 0, fmt.Errorf("limit must be greater than 0")
	}

	if limit > 100 {
		return 0, fmt.Errorf("limit cannot exceed 100")
	}

	return limit, nil
}

// validatePeriod validates the period parameter.
func (h *Handler) validatePeriod(period string) error {
	validPeriods := map[string]bool{
		"day":      true,
		"week":     true,
		"month":    true,
		"all_time": true,
	}

	if !validPeriods[period] {
		return fmt.Errorf("invalid period: %s (valid: day, week, month, all_time)", period)
	}
	return nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
