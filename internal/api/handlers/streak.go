package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/service/streak"
)

// streakResponse flattens the status and flags answers built from the fallback.
type streakResponse struct {
	streak.Status
	Degraded bool `json:"degraded"`
}

// GetStreak reports the caller's streak without changing it.
// GET /api/v1/streak.
func (h *Handler) GetStreak(c *gin.Context) {
	userID := middleware.UserID(c)

	status, err := h.streaks.GetStatus(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get streak, answering with zero status")
		c.JSON(http.StatusOK, streakResponse{Degraded: true})
		return
	}

	c.JSON(http.StatusOK, streakResponse{Status: *status})
}

// RecordActivity counts a completed learning activity.
// POST /api/v1/streak/activity.
func (h *Handler) RecordActivity(c *gin.Context) {
	userID := middleware.UserID(c)

	status, err := h.streaks.RecordActivity(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to record activity, answering with zero status")
		c.JSON(http.StatusOK, streakResponse{Degraded: true})
		return
	}

	c.JSON(http.StatusOK, streakResponse{Status: *status})
}
