package streak

import (
	"context"
	"fmt"
	"time"

	prommetrics "github.com/aimd54/hangul-path/internal/metrics"
	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/pkg/logger"
)

// ProfileStore interface for profile operations.
type ProfileStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.Profile, error)
	UpdateStreak(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error
}

// MilestoneChecker unlocks streak achievements.
type MilestoneChecker interface {
	CheckStreakMilestones(ctx context.Context, userID string, streakDays int) error
}

// Status is the streak view returned to clients.
type Status struct {
	Result
	LongestStreak  int        `json:"longest_streak"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// Service evaluates streaks against stored profiles.
type Service struct {
	profiles   ProfileStore
	milestones MilestoneChecker
	loc        *time.Location
	now        func() time.Time
	log        *logger.Logger
}

// NewService creates a new streak service. milestones may be nil.
func NewService(profiles ProfileStore, milestones MilestoneChecker, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		profiles:   profiles,
		milestones: milestones,
		loc:        loc,
		now:        time.Now,
		log:        log,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GetStatus reports the current streak without modifying it.
func (s *Service) GetStatus(ctx context.Context, userID string) (*Status, error) {
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		prommetrics.RecordStreakFailure("status")
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	now := s.now()
	outcome := Classify(now, profile.LastActivityAt, s.loc)
	result := Evaluate(now, profile.LastActivityAt, profile.StreakDays, ModeCheck, s.loc)
	prommetrics.RecordStreakEvaluation(ModeCheck.String(), string(outcome))

	return &Status{
		Result:         result,
		LongestStreak:  profile.LongestStreak,
		LastActivityAt: profile.LastActivityAt,
	}, nil
}

// RecordActivity counts a learning activity happening now and persists the new streak.
// Repeated activity on the same day leaves the stored row untouched.
func (s *Service) RecordActivity(ctx context.Context, userID string) (*Status, error) {
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		prommetrics.RecordStreakFailure("record")
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	now := s.now()
	outcome := Classify(now, profile.LastActivityAt, s.loc)
	result := Evaluate(now, profile.LastActivityAt, profile.StreakDays, ModeRecord, s.loc)
	prommetrics.RecordStreakEvaluation(ModeRecord.String(), string(outcome))

	status := &Status{
		Result:         result,
		LongestStreak:  profile.LongestStreak,
		LastActivityAt: profile.LastActivityAt,
	}

	if outcome == OutcomeSameDay {
		return status, nil
	}

	longest := profile.LongestStreak
	if result.StreakDays > longest {
		longest = result.StreakDays
	}

	if err := s.profiles.UpdateStreak(ctx, userID, result.StreakDays, longest, now); err != nil {
		prommetrics.RecordStreakFailure("record")
		return nil, fmt.Errorf("failed to save streak: %w", err)
	}

	status.LongestStreak = longest
	status.LastActivityAt = &now
	prommetrics.ObserveStreakLength(result.StreakDays)

	s.log.Info().
		Str("user_id", userID).
		Int("streak_days", result.StreakDays).
		Str("outcome", string(outcome)).
		Msg("Recorded learning activity")

	if s.milestones != nil {
		if err := s.milestones.CheckStreakMilestones(ctx, userID, result.StreakDays); err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Failed to check streak milestones")
		}
	}

	return status, nil
}
