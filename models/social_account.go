// models/social_account.go
package models

import "time"

const (
	SocialPlatformTwitter = "twitter"
	SocialPlatformYouTube = "youtube"
)

type SocialAccount struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	Platform   string    `json:"platform" gorm:"default:'twitter'"`
	Username   string    `json:"username" gorm:"not null"`
	ProfileURL string    `json:"profileUrl"`
	PhotoURL   string    `json:"photoUrl"`
	Source     string    `json:"source"` // where the photo came from (nitter | unavatar)
	CreatedAt  time.Time `json:"createdAt"`
}
