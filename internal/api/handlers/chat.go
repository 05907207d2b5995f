package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/service/chat"
	"github.com/aimd54/hangul-path/pkg/validator"
)

// Chat relays a learner message to the AI tutor.
// Responses use the {message|error, success} envelope the client expects.
// POST /api/v1/chat.
func (h *Handler) Chat(c *gin.Context) {
	userID := middleware.UserID(c)

	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.chatError(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	reply, err := h.chat.Reply(c.Request.Context(), userID, req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": reply, "success": true})
	case errors.Is(err, chat.ErrMessageTooLong):
		h.chatError(c, http.StatusBadRequest, h.localized(c, "chat.too_long"))
	case errors.Is(err, chat.ErrInvalidRequest):
		h.chatError(c, http.StatusBadRequest, h.localized(c, "chat.empty_message"))
	case errors.Is(err, chat.ErrNotConfigured):
		h.chatError(c, http.StatusServiceUnavailable, h.localized(c, "chat.unavailable"))
	default:
		h.chatError(c, http.StatusBadGateway, h.localized(c, "chat.unavailable"))
	}
}

// ChatRateLimited rejects a chat request that exceeded the per-user rate.
func (h *Handler) ChatRateLimited(c *gin.Context) {
	c.Abort()
	h.chatError(c, http.StatusTooManyRequests, h.localized(c, "error.rate_limited"))
}

func (h *Handler) chatError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message, "success": false})
}
