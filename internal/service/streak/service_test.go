package streak

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/pkg/logger"
	"github.com/aimd54/hangul-path/test/mocks"
)

type mockMilestones struct {
	calls []int
	err   error
}

func (m *mockMilestones) CheckStreakMilestones(ctx context.Context, userID string, streakDays int) error {
	m.calls = append(m.calls, streakDays)
	return m.err
}

func fixedClock(value string) func() time.Time {
	parsed, _ := time.Parse(time.RFC3339, value)
	return func() time.Time { return parsed }
}

func profileWith(streak, longest int, last string) func(ctx context.Context, userID string) (*models.Profile, error) {
	return func(ctx context.Context, userID string) (*models.Profile, error) {
		p := &models.Profile{UserID: userID, StreakDays: streak, LongestStreak: longest}
		if last != "" {
			at, _ := time.Parse(time.RFC3339, last)
			p.LastActivityAt = &at
		}
		return p, nil
	}
}

func TestService_RecordActivity_Continues(t *testing.T) {
	var saved struct {
		streak, longest int
		at              time.Time
	}
	repo := &mocks.MockProfileRepository{
		GetOrCreateFunc: profileWith(4, 4, "2024-03-09T21:00:00Z"),
		UpdateStreakFunc: func(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error {
			saved.streak, saved.longest, saved.at = streakDays, longestStreak, lastActivityAt
			return nil
		},
	}
	milestones := &mockMilestones{}

	svc := NewService(repo, milestones, time.UTC, logger.NewNop())
	svc.SetClock(fixedClock("2024-03-10T09:00:00Z"))

	status, err := svc.RecordActivity(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 5, status.StreakDays)
	assert.True(t, status.IsActive)
	assert.True(t, status.TodayCompleted)
	assert.Equal(t, 5, status.LongestStreak)

	assert.Equal(t, 5, saved.streak)
	assert.Equal(t, 5, saved.longest)
	assert.Equal(t, "2024-03-10T09:00:00Z", saved.at.Format(time.RFC3339))
	assert.Equal(t, []int{5}, milestones.calls)
}

func TestService_RecordActivity_KeepsLongest(t *testing.T) {
	var savedLongest int
	repo := &mocks.MockProfileRepository{
		GetOrCreateFunc: profileWith(9, 30, "2024-03-01T10:00:00Z"),
		UpdateStreakFunc: func(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error {
			savedLongest = longestStreak
			return nil
		},
	}

	svc := NewService(repo, nil, time.UTC, logger.NewNop())
	svc.SetClock(fixedClock("2024-03-10T09:00:00Z"))

	status, err := svc.RecordActivity(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, status.StreakDays)
	assert.Equal(t, 30, savedLongest)
}

func TestService_RecordActivity_SameDayDoesNotWrite(t *testing.T) {
	repo := &mocks.MockProfileRepository{
		GetOrCreateFunc: profileWith(2, 2, "2024-03-10T07:00:00Z"),
	}
	milestones := &mockMilestones{}

	svc := NewService(repo, milestones, time.UTC, logger.NewNop())
	svc.SetClock(fixedClock("2024-03-10T09:00:00Z"))

	status, err := svc.RecordActivity(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, status.StreakDays)
	assert.True(t, status.TodayCompleted)
	assert.Equal(t, 0, repo.UpdateStreakCalls)
	assert.Empty(t, milestones.calls)
}

func TestService_RecordActivity_SaveError(t *testing.T) {
	repo := &mocks.MockProfileRepository{
		UpdateStreakFunc: func(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error {
			return errors.New("connection reset")
		},
	}

	svc := NewService(repo, nil, time.UTC, logger.NewNop())

	_, err := svc.RecordActivity(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save streak")
}

func TestService_RecordActivity_MilestoneErrorIsLogged(t *testing.T) {
	repo := &mocks.MockProfileRepository{}
	milestones := &mockMilestones{err: errors.New("db down")}

	svc := NewService(repo, milestones, time.UTC, logger.NewNop())

	status, err := svc.RecordActivity(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, status.StreakDays)
}

func TestService_GetStatus(t *testing.T) {
	tests := []struct {
		name       string
		last       string
		stored     int
		wantStreak int
		wantActive bool
		wantToday  bool
	}{
		{"fresh profile", "", 0, 0, false, false},
		{"active yesterday", "2024-03-09T12:00:00Z", 6, 6, true, false},
		{"done today", "2024-03-10T06:00:00Z", 6, 6, true, true},
		{"lapsed", "2024-03-05T12:00:00Z", 6, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockProfileRepository{GetOrCreateFunc: profileWith(tt.stored, tt.stored, tt.last)}
			svc := NewService(repo, nil, time.UTC, logger.NewNop())
			svc.SetClock(fixedClock("2024-03-10T09:00:00Z"))

			status, err := svc.GetStatus(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStreak, status.StreakDays)
			assert.Equal(t, tt.wantActive, status.IsActive)
			assert.Equal(t, tt.wantToday, status.TodayCompleted)
			assert.Equal(t, 0, repo.UpdateStreakCalls)
		})
	}
}

func TestService_GetStatus_LoadError(t *testing.T) {
	repo := &mocks.MockProfileRepository{
		GetOrCreateFunc: func(ctx context.Context, userID string) (*models.Profile, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := NewService(repo, nil, time.UTC, logger.NewNop())

	status, err := svc.GetStatus(context.Background(), "user-1")
	assert.Error(t, err)
	assert.Nil(t, status)
}
