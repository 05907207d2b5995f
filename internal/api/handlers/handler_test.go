//nolint:noctx // Test file uses http.NewRequest for simplicity
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimd54/hangul-path/internal/i18n"
	"github.com/aimd54/hangul-path/internal/middleware"
	"github.com/aimd54/hangul-path/internal/models"
	"github.com/aimd54/hangul-path/internal/service/achievements"
	"github.com/aimd54/hangul-path/internal/service/chat"
	"github.com/aimd54/hangul-path/internal/service/leaderboard"
	"github.com/aimd54/hangul-path/internal/service/profile"
	"github.com/aimd54/hangul-path/internal/service/settings"
	"github.com/aimd54/hangul-path/internal/service/streak"
	"github.com/aimd54/hangul-path/internal/storage"
	"github.com/aimd54/hangul-path/pkg/logger"
)

const testUser = "user-1"

// Mock Profile Service
type mockProfileService struct {
	profile   *models.Profile
	uploadErr error
	uploaded  profile.Avatar
	body      []byte

	displayNameErr   error
	displayNameCalls int
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if m.profile == nil {
		return nil, fmt.Errorf("database down")
	}
	return m.profile, nil
}

func (m *mockProfileService) UploadAvatar(ctx context.Context, userID string, avatar profile.Avatar) (*models.Profile, error) {
	m.uploaded = avatar
	m.body, _ = io.ReadAll(avatar.Body)
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	url := "https://cdn.example/" + avatar.FileName
	return &models.Profile{UserID: userID, AvatarURL: &url}, nil
}

func (m *mockProfileService) UpdateDisplayName(ctx context.Context, userID, displayName string) (*models.Profile, error) {
	m.displayNameCalls++
	if m.displayNameErr != nil {
		return nil, m.displayNameErr
	}
	return &models.Profile{UserID: userID, DisplayName: displayName}, nil
}

// Mock Streak Service
type mockStreakService struct {
	status *streak.Status
	err    error
}

func (m *mockStreakService) GetStatus(ctx context.Context, userID string) (*streak.Status, error) {
	return m.status, m.err
}

func (m *mockStreakService) RecordActivity(ctx context.Context, userID string) (*streak.Status, error) {
	return m.status, m.err
}

// Mock Achievement Service
type mockAchievementService struct {
	unlocked    map[string]bool
	unlockCalls int
	dismissed   int
	lastLang    string
}

func (m *mockAchievementService) Unlock(ctx context.Context, userID, id string) (bool, error) {
	m.unlockCalls++
	if _, ok := achievements.Lookup(id); !ok {
		return false, fmt.Errorf("%w: %s", achievements.ErrUnknownAchievement, id)
	}
	if m.unlocked[id] {
		return false, nil
	}
	m.unlocked[id] = true
	return true, nil
}

func (m *mockAchievementService) Catalog(ctx context.Context, userID, lang string) ([]achievements.Entry, error) {
	m.lastLang = lang
	var entries []achievements.Entry
	for _, a := range achievements.All() {
		entries = append(entries, achievements.Entry{ID: a.ID, Title: a.Title(lang), Unlocked: m.unlocked[a.ID]})
	}
	return entries, nil
}

func (m *mockAchievementService) Current(userID, lang string) achievements.Popup {
	return achievements.Popup{Current: &achievements.Entry{ID: achievements.FirstLetter}, Pending: 2}
}

func (m *mockAchievementService) Dismiss(userID string) {
	m.dismissed++
}

// Mock Leaderboard Service
type mockLeaderboardService struct {
	entries []leaderboard.Entry
	stats   *leaderboard.UserStats
}

func (m *mockLeaderboardService) GetLeaderboard(ctx context.Context, period string, limit int) ([]leaderboard.Entry, error) {
	entries := m.entries
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (m *mockLeaderboardService) GetUserStats(ctx context.Context, userID string) (*leaderboard.UserStats, error) {
	if m.stats == nil {
		return nil, fmt.Errorf("stats unavailable")
	}
	return m.stats, nil
}

// Mock Settings Service
type mockSettingsService struct {
	current models.Settings
}

func (m *mockSettingsService) Get(ctx context.Context, userID string) (models.Settings, error) {
	return m.current, nil
}

func (m *mockSettingsService) Update(ctx context.Context, userID string, update settings.Update) (models.Settings, error) {
	if update.Language != nil {
		m.current.Language = *update.Language
	}
	if update.Muted != nil {
		m.current.Muted = *update.Muted
	}
	return m.current, nil
}

func (m *mockSettingsService) Language(ctx context.Context, userID string) string {
	return m.current.Language
}

// Mock Chat Service
type mockChatService struct {
	reply string
	err   error
	last  chat.Request
}

func (m *mockChatService) Reply(ctx context.Context, userID string, req chat.Request) (string, error) {
	m.last = req
	return m.reply, m.err
}

type testEnv struct {
	router       *gin.Engine
	profiles     *mockProfileService
	streaks      *mockStreakService
	achievements *mockAchievementService
	leaderboard  *mockLeaderboardService
	settings     *mockSettingsService
	chat         *mockChatService
}

// Test Setup
func setupTestHandler() *testEnv {
	env := &testEnv{
		profiles:     &mockProfileService{profile: &models.Profile{UserID: testUser, DisplayName: "Mina"}},
		streaks:      &mockStreakService{},
		achievements: &mockAchievementService{unlocked: map[string]bool{}},
		leaderboard:  &mockLeaderboardService{},
		settings:     &mockSettingsService{current: models.DefaultSettings(testUser)},
		chat:         &mockChatService{reply: "안녕하세요"},
	}

	h := NewHandler(Services{
		Profiles:     env.profiles,
		Streaks:      env.streaks,
		Achievements: env.achievements,
		Leaderboard:  env.leaderboard,
		Settings:     env.settings,
		Chat:         env.chat,
	}, logger.NewNop())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, testUser)
		c.Next()
	})
	api.GET("/profile", h.GetProfile)
	api.PATCH("/profile", h.UpdateProfile)
	api.POST("/profile/avatar", h.UploadAvatar)
	api.GET("/streak", h.GetStreak)
	api.POST("/streak/activity", h.RecordActivity)
	api.GET("/achievements", h.GetAchievements)
	api.GET("/achievements/current", h.GetCurrentAchievement)
	api.POST("/achievements/current/clear", h.ClearCurrentAchievement)
	api.POST("/achievements/:id/unlock", h.UnlockAchievement)
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/stats", h.GetStats)
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
	api.POST("/chat", h.Chat)
	env.router = router

	return env
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func avatarForm(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestGetProfile(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodGet, "/api/v1/profile", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Mina"`)

	env.profiles.profile = nil
	w = env.do(http.MethodGet, "/api/v1/profile", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	response := decode(t, w)
	assert.Equal(t, i18n.Message("ar", "error.internal"), response["error"])
	assert.Contains(t, response, "timestamp")
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodPatch, "/api/v1/profile", strings.NewReader(`{"display_name":"Layla"}`), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Layla"`)
	assert.Equal(t, 1, env.profiles.displayNameCalls)
}

func TestUpdateProfile_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantError  string
	}{
		{"missing name", `{}`, nil, ""},
		{"too long", `{"display_name":"` + strings.Repeat("a", 101) + `"}`, nil, ""},
		{"malformed", `{`, nil, ""},
		{"blank after trim", `{"display_name":"   "}`, profile.ErrInvalidDisplayName, i18n.Message("ar", "profile.invalid_display_name")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestHandler()
			env.profiles.displayNameErr = tt.serviceErr

			w := env.do(http.MethodPatch, "/api/v1/profile", strings.NewReader(tt.body), "application/json")
			assert.Equal(t, http.StatusBadRequest, w.Code)

			response := decode(t, w)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, response["error"])
				return
			}
			assert.NotEmpty(t, response["error"])
			assert.Equal(t, 0, env.profiles.displayNameCalls)
		})
	}
}

func TestUpdateProfile_StoreError(t *testing.T) {
	env := setupTestHandler()
	env.profiles.displayNameErr = errors.New("db down")

	w := env.do(http.MethodPatch, "/api/v1/profile", strings.NewReader(`{"display_name":"Layla"}`), "application/json")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, i18n.Message("ar", "error.internal"), decode(t, w)["error"])
}

func TestUploadAvatar(t *testing.T) {
	env := setupTestHandler()

	body, contentType := avatarForm(t, "avatar", "me.png", []byte("\x89PNG\r\n\x1a\nrest"))
	w := env.do(http.MethodPost, "/api/v1/profile/avatar", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "me.png", env.profiles.uploaded.FileName)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nrest"), env.profiles.body)
	assert.Contains(t, w.Body.String(), "https://cdn.example/me.png")
}

func TestUploadAvatar_Errors(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		uploadErr  error
		wantStatus int
		wantKey    string
	}{
		{"missing file", "picture", nil, http.StatusBadRequest, "avatar.missing"},
		{"too large", "avatar", profile.ErrAvatarTooLarge, http.StatusBadRequest, "avatar.too_large"},
		{"not an image", "avatar", profile.ErrAvatarNotImage, http.StatusBadRequest, "avatar.not_image"},
		{"storage disabled", "avatar", storage.ErrNotConfigured, http.StatusServiceUnavailable, "avatar.upload_failed"},
		{"storage failure", "avatar", errors.New("boom"), http.StatusInternalServerError, "avatar.upload_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestHandler()
			env.profiles.uploadErr = tt.uploadErr

			body, contentType := avatarForm(t, tt.field, "me.png", []byte("data"))
			w := env.do(http.MethodPost, "/api/v1/profile/avatar", body, contentType)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, i18n.Message("ar", tt.wantKey), decode(t, w)["error"])
		})
	}
}

func TestUploadAvatar_BodyLimit(t *testing.T) {
	env := setupTestHandler()

	body, contentType := avatarForm(t, "avatar", "big.png", bytes.Repeat([]byte{1}, profile.MaxAvatarSize+multipartOverhead+1))
	w := env.do(http.MethodPost, "/api/v1/profile/avatar", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.profiles.uploaded.FileName)
}

func TestStreak(t *testing.T) {
	env := setupTestHandler()
	last := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	env.streaks.status = &streak.Status{
		Result:         streak.Result{StreakDays: 5, IsActive: true, TodayCompleted: true},
		LongestStreak:  8,
		LastActivityAt: &last,
	}

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/streak"},
		{http.MethodPost, "/api/v1/streak/activity"},
	} {
		w := env.do(route.method, route.path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		response := decode(t, w)
		assert.Equal(t, float64(5), response["streak_days"])
		assert.Equal(t, true, response["is_active"])
		assert.Equal(t, true, response["today_completed"])
		assert.Equal(t, false, response["degraded"])
	}
}

func TestStreak_Degraded(t *testing.T) {
	env := setupTestHandler()
	env.streaks.err = errors.New("database down")

	w := env.do(http.MethodPost, "/api/v1/streak/activity", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, float64(0), response["streak_days"])
	assert.Equal(t, false, response["is_active"])
	assert.Equal(t, false, response["today_completed"])
	assert.Equal(t, true, response["degraded"])
}

func TestGetAchievements(t *testing.T) {
	env := setupTestHandler()
	env.achievements.unlocked[achievements.FirstLetter] = true

	w := env.do(http.MethodGet, "/api/v1/achievements", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, float64(1), response["unlocked"])
	assert.Equal(t, float64(len(achievements.All())), response["total"])
	assert.Equal(t, "ar", response["language"])
}

func TestGetAchievements_Language(t *testing.T) {
	env := setupTestHandler()

	// saved preference
	env.settings.current.Language = "ko"
	env.do(http.MethodGet, "/api/v1/achievements", nil, "")
	assert.Equal(t, "ko", env.achievements.lastLang)

	// query override
	env.do(http.MethodGet, "/api/v1/achievements?lang=ar", nil, "")
	assert.Equal(t, "ar", env.achievements.lastLang)

	// unsupported override falls back to the saved preference
	env.do(http.MethodGet, "/api/v1/achievements?lang=fr", nil, "")
	assert.Equal(t, "ko", env.achievements.lastLang)
}

func TestUnlockAchievement(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodPost, "/api/v1/achievements/first_word/unlock", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "first_word", response["achievement_id"])
	assert.Equal(t, false, response["already_unlocked"])

	w = env.do(http.MethodPost, "/api/v1/achievements/first_word/unlock", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["already_unlocked"])
}

func TestUnlockAchievement_Unknown(t *testing.T) {
	env := setupTestHandler()
	env.settings.current.Language = "ko"

	w := env.do(http.MethodPost, "/api/v1/achievements/nope/unlock", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, i18n.Message("ko", "achievement.unknown"), decode(t, w)["error"])
	assert.Equal(t, 0, env.achievements.unlockCalls)
}

func TestUnlockAchievement_ServerDerived(t *testing.T) {
	for _, id := range []string{
		achievements.Streak3,
		achievements.Streak7,
		achievements.Streak30,
		achievements.ProfilePhoto,
		achievements.FirstChat,
	} {
		t.Run(id, func(t *testing.T) {
			env := setupTestHandler()

			w := env.do(http.MethodPost, "/api/v1/achievements/"+id+"/unlock", nil, "")
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, i18n.Message("ar", "achievement.not_claimable"), decode(t, w)["error"])
			assert.Equal(t, 0, env.achievements.unlockCalls)
			assert.False(t, env.achievements.unlocked[id])
		})
	}
}

func TestCurrentAchievement(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodGet, "/api/v1/achievements/current", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, float64(2), response["pending"])
	assert.Equal(t, achievements.FirstLetter, response["current"].(map[string]interface{})["id"])

	w = env.do(http.MethodPost, "/api/v1/achievements/current/clear", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, env.achievements.dismissed)
}

func TestGetLeaderboard(t *testing.T) {
	env := setupTestHandler()
	env.leaderboard.entries = []leaderboard.Entry{
		{Rank: 1, UserID: "u-1", Points: 300},
		{Rank: 2, UserID: "u-2", Points: 120},
		{Rank: 3, UserID: "u-3", Points: 40},
	}

	tests := []struct {
		name        string
		query       string
		wantStatus  int
		wantEntries int
	}{
		{"defaults", "", http.StatusOK, 3},
		{"limited", "?period=week&limit=2", http.StatusOK, 2},
		{"invalid period", "?period=year", http.StatusBadRequest, 0},
		{"invalid limit", "?limit=abc", http.StatusBadRequest, 0},
		{"limit too high", "?limit=101", http.StatusBadRequest, 0},
		{"limit zero", "?limit=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, "/api/v1/leaderboard"+tt.query, nil, "")
			assert.Equal(t, tt.wantStatus, w.Code)

			response := decode(t, w)
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, response, "error")
				return
			}
			assert.Equal(t, float64(tt.wantEntries), response["total_entries"])
		})
	}
}

func TestGetStats(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodGet, "/api/v1/stats", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	env.leaderboard.stats = &leaderboard.UserStats{UserID: testUser, Points: 95, GlobalRank: 4}
	w = env.do(http.MethodGet, "/api/v1/stats", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
}

func TestSettings(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodGet, "/api/v1/settings", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ar", decode(t, w)["language"])

	w = env.do(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"language":"ko","muted":true}`), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "ko", response["language"])
	assert.Equal(t, true, response["muted"])
}

func TestUpdateSettings_Invalid(t *testing.T) {
	env := setupTestHandler()

	w := env.do(http.MethodPut, "/api/v1/settings", strings.NewReader(`{"language":"fr"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "language")

	w = env.do(http.MethodPut, "/api/v1/settings", strings.NewReader(`{`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ar", env.settings.current.Language)
}

func TestChat(t *testing.T) {
	env := setupTestHandler()

	payload := `{"message":"how do I say hello?","conversationHistory":[{"role":"user","content":"hi"},{"role":"assistant","content":"안녕"}]}`
	w := env.do(http.MethodPost, "/api/v1/chat", strings.NewReader(payload), "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, "안녕하세요", response["message"])
	assert.Equal(t, true, response["success"])
	require.Len(t, env.chat.last.ConversationHistory, 2)
	assert.Equal(t, chat.RoleAssistant, env.chat.last.ConversationHistory[1].Role)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		replyErr   error
		wantStatus int
		wantError  string
	}{
		{"missing message", `{}`, nil, http.StatusBadRequest, ""},
		{"bad role", `{"message":"hi","conversationHistory":[{"role":"system","content":"x"}]}`, nil, http.StatusBadRequest, ""},
		{"too long", `{"message":"hi"}`, chat.ErrMessageTooLong, http.StatusBadRequest, i18n.Message("ar", "chat.too_long")},
		{"empty", `{"message":"  "}`, chat.ErrEmptyMessage, http.StatusBadRequest, i18n.Message("ar", "chat.empty_message")},
		{"upstream", `{"message":"hi"}`, chat.ErrUpstream, http.StatusBadGateway, i18n.Message("ar", "chat.unavailable")},
		{"not configured", `{"message":"hi"}`, fmt.Errorf("%w: %w", chat.ErrUpstream, chat.ErrNotConfigured), http.StatusServiceUnavailable, i18n.Message("ar", "chat.unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestHandler()
			env.chat.err = tt.replyErr

			w := env.do(http.MethodPost, "/api/v1/chat", strings.NewReader(tt.payload), "application/json")
			assert.Equal(t, tt.wantStatus, w.Code)

			response := decode(t, w)
			assert.Equal(t, false, response["success"])
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, response["error"])
			} else {
				assert.NotEmpty(t, response["error"])
			}
		})
	}
}

func TestChatRateLimited(t *testing.T) {
	env := setupTestHandler()
	h := NewHandler(Services{Settings: env.settings}, logger.NewNop())

	limiter := middleware.NewRateLimiter(1)
	router := gin.New()
	router.POST("/chat", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, testUser)
		c.Next()
	}, limiter.Middleware(h.ChatRateLimited), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	send := func() *httptest.ResponseRecorder {
		req, _ := http.NewRequest(http.MethodPost, "/chat", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	response := decode(t, w)
	assert.Equal(t, false, response["success"])
	assert.Equal(t, i18n.Message("ar", "error.rate_limited"), response["error"])
}
