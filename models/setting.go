// models/setting.go
package models

import "time"

// Setting is the per-user preference row (one per user).
type Setting struct {
	UserID string `json:"user_id" gorm:"primaryKey"`

	// Hour of day (0-23) at which Daily tasks roll over back to Pending.
	DailyResetHour int `json:"dailyResetHour" gorm:"default:0"`

	// Fallback link assigned to imported records whose description carries
	// no URL of its own.
	DefaultLink string `json:"defaultLink"`

	UpdatedAt time.Time `json:"updatedAt"`
}
