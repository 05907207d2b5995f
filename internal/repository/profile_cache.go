package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aimd54/hangul-path/internal/cache"
	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// ProfileStore is the profile persistence contract shared by the plain and cached repositories.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Profile, error)
	UpdateStreak(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdateDisplayName(ctx context.Context, userID, displayName string) error
}

// CachedProfileRepository serves profile reads from the cache and invalidates on writes.
// Cache failures are logged and fall through to the database.
type CachedProfileRepository struct {
	next  ProfileStore
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedProfileRepository wraps a profile store with a read-through cache.
func NewCachedProfileRepository(next ProfileStore, c cache.Cache, ttl time.Duration, log *logger.Logger) *CachedProfileRepository {
	return &CachedProfileRepository{next: next, cache: c, ttl: ttl, log: log}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

// GetOrCreate returns the cached profile or loads and caches it.
func (r *CachedProfileRepository) GetOrCreate(ctx context.Context, userID string) (*models.Profile, error) {
	key := profileKey(userID)

	raw, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var profile models.Profile
		if jsonErr := json.Unmarshal([]byte(raw), &profile); jsonErr == nil {
			return &profile, nil
		}
		r.log.Warn().Str("key", key).Msg("Discarding undecodable cached profile")
	case !errors.Is(err, cache.ErrCacheMiss):
		r.log.Warn().Err(err).Str("key", key).Msg("Profile cache read failed")
	}

	profile, err := r.next.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(profile); jsonErr == nil {
		if setErr := r.cache.Set(ctx, key, string(encoded), r.ttl); setErr != nil {
			r.log.Warn().Err(setErr).Str("key", key).Msg("Profile cache write failed")
		}
	}

	return profile, nil
}

// UpdateStreak writes through and invalidates the cached profile.
func (r *CachedProfileRepository) UpdateStreak(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error {
	if err := r.next.UpdateStreak(ctx, userID, streakDays, longestStreak, lastActivityAt); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

// UpdateAvatar writes through and invalidates the cached profile.
func (r *CachedProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	if err := r.next.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

// UpdateDisplayName writes through and invalidates the cached profile.
func (r *CachedProfileRepository) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	if err := r.next.UpdateDisplayName(ctx, userID, displayName); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *CachedProfileRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, profileKey(userID)); err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("Profile cache invalidation failed")
	}
}
