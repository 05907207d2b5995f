package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/service/achievements"
)

// GetAchievements returns the catalog with the caller's unlock state.
// GET /api/v1/achievements?lang=ko.
func (h *Handler) GetAchievements(c *gin.Context) {
	userID := middleware.UserID(c)
	lang := h.language(c)

	entries, err := h.achievements.Catalog(c.Request.Context(), userID, lang)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get achievements")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "error.internal"))
		return
	}

	unlocked := 0
	for _, e := range entries {
		if e.Unlocked {
			unlocked++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"achievements": entries,
		"unlocked":     unlocked,
		"total":        len(entries),
		"language":     lang,
	})
}

// UnlockAchievement unlocks a lesson achievement and queues its pop-up.
// Achievements the server derives (streaks, photo, chat) are rejected.
// POST /api/v1/achievements/:id/unlock.
func (h *Handler) UnlockAchievement(c *gin.Context) {
	userID := middleware.UserID(c)
	id := c.Param("id")

	if _, ok := achievements.Lookup(id); !ok {
		h.errorResponse(c, http.StatusNotFound, h.localized(c, "achievement.unknown"))
		return
	}
	if !achievements.ClientUnlockable(id) {
		h.log.Warn().Str("user_id", userID).Str("achievement", id).Msg("Rejected client unlock of server-derived achievement")
		h.errorResponse(c, http.StatusForbidden, h.localized(c, "achievement.not_claimable"))
		return
	}

	created, err := h.achievements.Unlock(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, achievements.ErrUnknownAchievement) {
			h.errorResponse(c, http.StatusNotFound, h.localized(c, "achievement.unknown"))
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Str("achievement", id).Msg("Failed to unlock achievement")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "error.internal"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"achievement_id":   id,
		"unlocked":         true,
		"already_unlocked": !created,
	})
}

// GetCurrentAchievement returns the displayed pop-up and the number queued behind it.
// GET /api/v1/achievements/current.
func (h *Handler) GetCurrentAchievement(c *gin.Context) {
	c.JSON(http.StatusOK, h.achievements.Current(middleware.UserID(c), h.language(c)))
}

// ClearCurrentAchievement dismisses the displayed pop-up.
// POST /api/v1/achievements/current/clear.
func (h *Handler) ClearCurrentAchievement(c *gin.Context) {
	h.achievements.Dismiss(middleware.UserID(c))
	c.Status(http.StatusNoContent)
}
