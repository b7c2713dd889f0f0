package models

import "time"

// Assignment is a teacher-authored task targeted at one student. The stored
// status is only ever "assigned" or "completed"; the overdue label is derived
// at read time and never written back.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	TeacherID   uint      `gorm:"not null;index" json:"teacher_id"`
	TaskType    string    `gorm:"size:64;not null" json:"task_type"`
	Points      int       `gorm:"not null" json:"points"`
	Description string    `gorm:"type:text;not null" json:"description"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	Status      string    `gorm:"size:32;not null;default:assigned" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Student     User      `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

const (
	// AssignmentStatusAssigned indicates the assignment is still open.
	AssignmentStatusAssigned = "assigned"
	// AssignmentStatusCompleted indicates the student fulfilled the assignment.
	AssignmentStatusCompleted = "completed"
	// AssignmentStatusOverdue is a view-time label for open assignments past
	// their due date. It is never persisted.
	AssignmentStatusOverdue = "overdue"
)

// IsPastDue reports whether the due date's calendar day lies before the
// calendar day of the given instant. An assignment due today is still open.
func (a Assignment) IsPastDue(now time.Time) bool {
	local := now.In(a.DueDate.Location())
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.DueDate.Location())
	return a.DueDate.Before(startOfDay)
}

// DisplayStatus returns the status with the overdue label applied.
func (a Assignment) DisplayStatus(now time.Time) string {
	if a.Status == AssignmentStatusAssigned && a.IsPastDue(now) {
		return AssignmentStatusOverdue
	}
	return a.Status
}
