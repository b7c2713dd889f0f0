package models

import "time"

// TaskSubmission represents evidence a student handed in for a real-world
// eco task. Status and confidence are written exactly once by the scoring
// pipeline; the record is immutable afterwards.
type TaskSubmission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PublicID    string    `gorm:"size:36;uniqueIndex;not null" json:"public_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	TaskType    string    `gorm:"size:64;not null;index" json:"task_type"`
	TemplateID  string    `gorm:"size:64" json:"template_id"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ImageURL    string    `gorm:"size:512" json:"image_url"`
	Status      string    `gorm:"size:32;not null;default:pending" json:"status"`
	Confidence  *float64  `json:"confidence"`
	Feedback    string    `gorm:"type:text" json:"feedback"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// SubmissionStatusPending indicates the submission has not been scored yet.
	SubmissionStatusPending = "pending"
	// SubmissionStatusApproved indicates the evidence passed the confidence threshold.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRejected indicates the evidence fell below the threshold.
	SubmissionStatusRejected = "rejected"
)

// IsApproved reports whether the submission counts towards progression.
func (s TaskSubmission) IsApproved() bool {
	return s.Status == SubmissionStatusApproved
}
