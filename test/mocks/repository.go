package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/aimd54/hangul-path/internal/models"
)

// MockProfileRepository is a simple mock for the profile repository
type MockProfileRepository struct {
	GetOrCreateFunc  func(ctx context.Context, userID string) (*models.Profile, error)
	UpdateStreakFunc func(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error
	UpdateAvatarFunc func(ctx context.Context, userID, avatarURL string) error

	UpdateDisplayNameFunc func(ctx context.Context, userID, displayName string) error

	GetOrCreateCalls       int
	UpdateStreakCalls      int
	UpdateAvatarCalls      int
	UpdateDisplayNameCalls int
}

func (m *MockProfileRepository) GetOrCreate(ctx context.Context, userID string) (*models.Profile, error) {
	m.GetOrCreateCalls++
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, userID)
	}
	return &models.Profile{UserID: userID}, nil
}

func (m *MockProfileRepository) UpdateStreak(ctx context.Context, userID string, streakDays, longestStreak int, lastActivityAt time.Time) error {
	m.UpdateStreakCalls++
	if m.UpdateStreakFunc != nil {
		return m.UpdateStreakFunc(ctx, userID, streakDays, longestStreak, lastActivityAt)
	}
	return nil
}

func (m *MockProfileRepository) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	m.UpdateAvatarCalls++
	if m.UpdateAvatarFunc != nil {
		return m.UpdateAvatarFunc(ctx, userID, avatarURL)
	}
	return nil
}

func (m *MockProfileRepository) UpdateDisplayName(ctx context.Context, userID, displayName string) error {
	m.UpdateDisplayNameCalls++
	if m.UpdateDisplayNameFunc != nil {
		return m.UpdateDisplayNameFunc(ctx, userID, displayName)
	}
	return nil
}

// MockSettingsStore keeps settings in memory.
type MockSettingsStore struct {
	mu   sync.Mutex
	data map[string]models.Settings
}

// NewMockSettingsStore creates an empty settings store.
func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{data: make(map[string]models.Settings)}
}

// Load returns the saved settings or the defaults.
func (m *MockSettingsStore) Load(ctx context.Context, userID string) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.data[userID]; ok {
		return s, nil
	}
	return models.DefaultSettings(userID), nil
}

// Save stores the settings.
func (m *MockSettingsStore) Save(ctx context.Context, settings models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[settings.UserID] = settings
	return nil
}
