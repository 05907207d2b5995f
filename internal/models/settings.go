package models

import (
	"time"
)

// Supported interface languages.
const (
	LanguageArabic = "ar"
	LanguageKorean = "ko"
)

// Settings holds per-user preferences previously kept in browser storage.
type Settings struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	Language  string    `gorm:"size:8;not null" json:"language"`
	Muted     bool      `gorm:"not null" json:"muted"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Settings model.
func (Settings) TableName() string {
	return "user_settings"
}

// DefaultSettings returns the settings used before a user saved any.
func DefaultSettings(userID string) Settings {
	return Settings{UserID: userID, Language: LanguageArabic}
}

// IsSupportedLanguage reports whether lang is one of the interface languages.
func IsSupportedLanguage(lang string) bool {
	return lang == LanguageArabic || lang == LanguageKorean
}
