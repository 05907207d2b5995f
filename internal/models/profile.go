// Package models defines domain models for the learning backend.
package models

import (
	"time"
)

// Profile is the per-user record holding streak state and avatar.
type Profile struct {
	UserID         string     `gorm:"primaryKey;size:64" json:"user_id"`
	DisplayName    string     `gorm:"size:100" json:"display_name"`
	AvatarURL      *string    `gorm:"type:text" json:"avatar_url"`
	StreakDays     int        `gorm:"not null;default:0" json:"streak_days"`
	LongestStreak  int        `gorm:"not null;default:0" json:"longest_streak"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Profile model.
func (Profile) TableName() string {
	return "profiles"
}
