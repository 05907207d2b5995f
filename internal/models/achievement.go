package models

import (
	"time"
)

// Achievement is an entry of the static achievement catalog.
type Achievement struct {
	ID      string `json:"id"`
	TitleAR string `json:"title_ar"`
	TitleKO string `json:"title_ko"`
	Icon    string `json:"icon"`
	Points  int    `json:"points"`
}

// Title returns the display text for a language, falling back to Arabic.
func (a Achievement) Title(lang string) string {
	if lang == LanguageKorean {
		return a.TitleKO
	}
	return a.TitleAR
}

// UserAchievement represents an achievement unlocked by a user.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"not null;size:64;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;size:64;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Points        int       `gorm:"not null;default:0" json:"points"` // snapshot of catalog points
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
