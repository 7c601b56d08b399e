package models

import "time"

// SettingsRecord stores one JSON settings document under a fixed storage key.
type SettingsRecord struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
