// Package achievements tracks unlocked achievements and the pop-ups announcing them.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	prommetrics "github.com/aimd54/hangul-path/internal/metrics"
	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/internal/repository"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// ErrUnknownAchievement is returned for ids missing from the catalog.
var ErrUnknownAchievement = errors.New("unknown achievement")

// AchievementRepository interface for unlocked-achievement operations.
type AchievementRepository interface {
	Award(ctx context.Context, userID, achievementID string, points int) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserAchievement, error)
	CountHolders(ctx context.Context, achievementID string) (int64, error)
}

// Entry is a catalog item as seen by one user.
type Entry struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Icon       string     `json:"icon"`
	Points     int        `json:"points"`
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// Popup describes the achievement currently displayed to a user.
type Popup struct {
	Current *Entry `json:"current"`
	Pending int    `json:"pending"`
}

// Service handles achievement unlocking and notification.
type Service struct {
	achievementRepo AchievementRepository
	registry        *Registry
	log             *logger.Logger
}

// NewService creates a new achievement service.
func NewService(achievementRepo *repository.AchievementRepository, registry *Registry, log *logger.Logger) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		registry:        registry,
		log:             log,
	}
}

// NewServiceWithInterfaces creates a new achievement service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(achievementRepo AchievementRepository, registry *Registry, log *logger.Logger) *Service {
	return &Service{
		achievementRepo: achievementRepo,
		registry:        registry,
		log:             log,
	}
}

// Unlock awards an achievement and queues its pop-up.
// Returns false when the user already had it; nothing is shown in that case.
func (s *Service) Unlock(ctx context.Context, userID, id string) (bool, error) {
	achievement, ok := Lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
	}

	created, err := s.achievementRepo.Award(ctx, userID, id, achievement.Points)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Str("achievement", id).Msg("Failed to award achievement")
		return false, fmt.Errorf("failed to award achievement: %w", err)
	}
	if !created {
		return false, nil
	}

	s.registry.Get(userID).Show(id)
	prommetrics.RecordAchievementUnlocked(id)
	s.updateHolders(ctx, id)

	s.log.Info().
		Str("user_id", userID).
		Str("achievement", id).
		Int("points", achievement.Points).
		Msg("Achievement unlocked")

	return true, nil
}

func (s *Service) updateHolders(ctx context.Context, id string) {
	count, err := s.achievementRepo.CountHolders(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("achievement", id).Msg("Failed to count achievement holders")
		return
	}
	prommetrics.SetAchievementHolders(id, count)
}

// Catalog returns every achievement with the user's unlock state, titled in lang.
func (s *Service) Catalog(ctx context.Context, userID, lang string) ([]Entry, error) {
	unlocked, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	unlockedAt := make(map[string]time.Time, len(unlocked))
	for _, ua := range unlocked {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	all := All()
	entries := make([]Entry, 0, len(all))
	for _, a := range all {
		entry := toEntry(a, lang)
		if at, ok := unlockedAt[a.ID]; ok {
			at := at
			entry.Unlocked = true
			entry.UnlockedAt = &at
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Current returns the user's displayed pop-up and the number waiting behind it.
func (s *Service) Current(userID, lang string) Popup {
	n := s.registry.Get(userID)

	popup := Popup{Pending: len(n.Pending())}
	if a, ok := n.Current(); ok {
		entry := toEntry(a, lang)
		entry.Unlocked = true
		popup.Current = &entry
	}
	return popup
}

// Dismiss clears the user's displayed pop-up.
func (s *Service) Dismiss(userID string) {
	s.registry.Get(userID).Clear()
}

// CheckStreakMilestones unlocks every streak achievement reached by streakDays.
func (s *Service) CheckStreakMilestones(ctx context.Context, userID string, streakDays int) error {
	var errs []error
	for _, m := range streakMilestones {
		if streakDays < m.days {
			break
		}
		if _, err := s.Unlock(ctx, userID, m.id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func toEntry(a models.Achievement, lang string) Entry {
	return Entry{
		ID:     a.ID,
		Title:  a.Title(lang),
		Icon:   a.Icon,
		Points: a.Points,
	}
}
