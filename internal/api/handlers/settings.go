package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/service/settings"
	"github.com/aimd54/hangul-path/pkg/validator"
)

// GetSettings returns the caller's preferences.
// GET /api/v1/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	userID := middleware.UserID(c)

	s, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get settings")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "error.internal"))
		return
	}

	c.JSON(http.StatusOK, s)
}

// UpdateSettings applies a partial settings change.
// PUT /api/v1/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	userID := middleware.UserID(c)

	var update settings.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.errorResponse(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	s, err := h.settings.Update(c.Request.Context(), userID, update)
	if err != nil {
		if errors.Is(err, settings.ErrInvalidLanguage) {
			h.errorResponse(c, http.StatusBadRequest, h.localized(c, "settings.invalid_language"))
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to update settings")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "error.internal"))
		return
	}

	c.JSON(http.StatusOK, s)
}
