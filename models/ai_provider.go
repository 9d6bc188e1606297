// models/ai_provider.go
package models

import "time"

const (
	AIProviderOpenAI      = "openai"
	AIProviderGroq        = "groq"
	AIProviderAnthropic   = "anthropic"
	AIProviderCohere      = "cohere"
	AIProviderHuggingFace = "huggingface"
)

// AIProvider stores one chat-completion credential. The Type tag selects
// the request/response shape used by the chat proxy.
type AIProvider struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Type      string    `json:"type" gorm:"default:'openai'"`
	APIKey    string    `json:"-" gorm:"not null"` // never serialized back out
	CreatedAt time.Time `json:"createdAt"`
}
