package domain

import "time"

// Mode is how a notification was addressed
type Mode string

const (
	ModeTopic  Mode = "topic"
	ModeTokens Mode = "tokens"
)

// DispatchRecord is one attempted push notification and its outcome
type DispatchRecord struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Trigger      string    `json:"trigger" gorm:"index;not null"`
	Mode         Mode      `json:"mode" gorm:"not null"`
	Target       string    `json:"target"` // Topic name or recipient user id
	NewsID       string    `json:"news_id,omitempty" gorm:"index"`
	Recipients   int       `json:"recipients"` // Device tokens addressed, 0 for topics
	SuccessCount int       `json:"success_count"`
	FailureCount int       `json:"failure_count"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}
