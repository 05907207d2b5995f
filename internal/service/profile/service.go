// Package profile manages learner profiles and avatars.
package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	prommetrics "github.com/aimd54/hangul-path/internal/metrics"
	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/internal/repository"
	"github.com/aimd54/hangul-path/internal/storage"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// MaxAvatarSize is the largest accepted avatar in bytes.
const MaxAvatarSize = 2 << 20

// MaxDisplayNameLength is the longest display name in characters.
const MaxDisplayNameLength = 100

// Avatar validation errors. Storage is never contacted when one is returned.
var (
	ErrAvatarTooLarge = errors.New("avatar exceeds 2MB")
	ErrAvatarNotImage = errors.New("avatar is not an image")
)

// ErrInvalidDisplayName is returned for blank or overlong display names.
var ErrInvalidDisplayName = errors.New("invalid display name")

// Unlocker awards achievements.
type Unlocker interface {
	Unlock(ctx context.Context, userID, id string) (bool, error)
}

// Avatar is an uploaded image as received from the client.
type Avatar struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service handles profile reads and avatar uploads.
type Service struct {
	profiles     repository.ProfileStore
	storage      storage.ImageStorage
	unlocker     Unlocker
	avatarFolder string
	log          *logger.Logger
}

// NewService creates a new profile service. unlocker may be nil.
func NewService(profiles repository.ProfileStore, images storage.ImageStorage, unlocker Unlocker, avatarFolder string, log *logger.Logger) *Service {
	if avatarFolder == "" {
		avatarFolder = "avatars"
	}
	return &Service{
		profiles:     profiles,
		storage:      images,
		unlocker:     unlocker,
		avatarFolder: avatarFolder,
		log:          log,
	}
}

// GetProfile returns the user's profile, creating an empty one on first access.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// UpdateDisplayName sets the name shown on the leaderboard.
// Surrounding whitespace is trimmed before validation.
func (s *Service) UpdateDisplayName(ctx context.Context, userID, displayName string) (*models.Profile, error) {
	name := strings.TrimSpace(displayName)
	if name == "" || utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return nil, ErrInvalidDisplayName
	}

	current, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := s.profiles.UpdateDisplayName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("failed to save display name: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("Display name updated")

	updated := *current
	updated.DisplayName = name
	return &updated, nil
}

// UploadAvatar validates and stores a new avatar, replacing the previous one.
func (s *Service) UploadAvatar(ctx context.Context, userID string, avatar Avatar) (*models.Profile, error) {
	data, err := readAvatar(avatar)
	if err != nil {
		switch {
		case errors.Is(err, ErrAvatarTooLarge):
			prommetrics.RecordAvatarUpload("rejected_size")
		case errors.Is(err, ErrAvatarNotImage):
			prommetrics.RecordAvatarUpload("rejected_type")
		default:
			prommetrics.RecordAvatarUpload("error")
		}
		return nil, err
	}

	current, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		prommetrics.RecordAvatarUpload("error")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	url, err := s.storage.UploadImage(ctx, bytes.NewReader(data), path.Join(s.avatarFolder, userID), avatar.FileName)
	if err != nil {
		prommetrics.RecordAvatarUpload("error")
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	if err := s.profiles.UpdateAvatar(ctx, userID, url); err != nil {
		prommetrics.RecordAvatarUpload("error")
		s.deleteBestEffort(ctx, userID, url)
		return nil, fmt.Errorf("failed to save avatar url: %w", err)
	}

	if current.AvatarURL != nil && *current.AvatarURL != "" && *current.AvatarURL != url {
		s.deleteBestEffort(ctx, userID, *current.AvatarURL)
	}

	prommetrics.RecordAvatarUpload("success")
	prommetrics.ObserveAvatarSize(int64(len(data)))
	s.log.Info().Str("user_id", userID).Int("bytes", len(data)).Msg("Avatar updated")

	if s.unlocker != nil {
		if _, err := s.unlocker.Unlock(ctx, userID, "profile_photo"); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to unlock profile photo achievement")
		}
	}

	updated := *current
	updated.AvatarURL = &url
	return &updated, nil
}

func (s *Service) deleteBestEffort(ctx context.Context, userID, url string) {
	if err := s.storage.DeleteImage(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("url", url).Msg("Failed to delete avatar")
	}
}

// readAvatar checks the declared size and type, then reads and sniffs the content.
func readAvatar(avatar Avatar) ([]byte, error) {
	if avatar.Size > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	if !isImageType(avatar.ContentType) {
		return nil, ErrAvatarNotImage
	}
	if avatar.Body == nil {
		return nil, ErrAvatarNotImage
	}

	data, err := io.ReadAll(io.LimitReader(avatar.Body, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read avatar: %w", err)
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	if len(data) == 0 || !isImageType(mimetype.Detect(data).String()) {
		return nil, ErrAvatarNotImage
	}

	return data, nil
}

func isImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
