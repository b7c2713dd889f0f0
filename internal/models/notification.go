package models

import "time"

// Notification is a persisted unlock or verdict event shown to a user.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:32;not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// NotificationTypeAchievement signals a newly unlocked achievement.
	NotificationTypeAchievement = "achievement"
	// NotificationTypeBadge signals a newly earned badge.
	NotificationTypeBadge = "badge"
	// NotificationTypeSubmission signals a scored submission verdict.
	NotificationTypeSubmission = "submission"
)
