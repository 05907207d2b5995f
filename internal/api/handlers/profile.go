package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/service/profile"
	"github.com/aimd54/hangul-path/internal/storage"
	"github.com/aimd54/hangul-path/pkg/validator"
)

// multipartOverhead is allowed on top of the avatar for form boundaries and headers.
const multipartOverhead = 64 << 10

// GetProfile returns the caller's profile, creating it on first access.
// GET /api/v1/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)

	p, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "error.internal"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// profileUpdate is the body of PATCH /profile.
type profileUpdate struct {
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

// UpdateProfile changes the caller's display name.
// PATCH /api/v1/profile.
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := middleware.UserID(c)

	var req profileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, validator.FormatValidationError(err))
		return
	}

	updated, err := h.profiles.UpdateDisplayName(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidDisplayName) {
			h.errorResponse(c, http.StatusBadRequest, h.localized(c, "profile.invalid_display_name"))
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to update display name")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "error.internal"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": updated})
}

// UploadAvatar replaces the caller's avatar with the multipart "avatar" file.
// POST /api/v1/profile/avatar.
func (h *Handler) UploadAvatar(c *gin.Context) {
	userID := middleware.UserID(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, profile.MaxAvatarSize+multipartOverhead)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorResponse(c, http.StatusBadRequest, h.localized(c, "avatar.too_large"))
			return
		}
		h.errorResponse(c, http.StatusBadRequest, h.localized(c, "avatar.missing"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to open uploaded avatar")
		h.errorResponse(c, http.StatusBadRequest, h.localized(c, "avatar.missing"))
		return
	}
	defer file.Close()

	updated, err := h.profiles.UploadAvatar(c.Request.Context(), userID, profile.Avatar{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"profile": updated})
	case errors.Is(err, profile.ErrAvatarTooLarge):
		h.errorResponse(c, http.StatusBadRequest, h.localized(c, "avatar.too_large"))
	case errors.Is(err, profile.ErrAvatarNotImage):
		h.errorResponse(c, http.StatusBadRequest, h.localized(c, "avatar.not_image"))
	case errors.Is(err, storage.ErrNotConfigured):
		h.errorResponse(c, http.StatusServiceUnavailable, h.localized(c, "avatar.upload_failed"))
	default:
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to upload avatar")
		h.errorResponse(c, http.StatusInternalServerError, h.localized(c, "avatar.upload_failed"))
	}
}
