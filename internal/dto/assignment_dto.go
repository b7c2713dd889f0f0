package dto

import (
	"time"

	"github.com/econova/econova-api/internal/models"
)

// AssignmentCreateRequest describes the payload for assigning a task.
type AssignmentCreateRequest struct {
	StudentID   uint   `json:"student_id" validate:"required,min=1"`
	TaskType    string `json:"task_type" validate:"required,min=2,max=64"`
	Description string `json:"description" validate:"required,min=10"`
	Points      int    `json:"points" validate:"required,min=1"`
	DueDate     string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// AssignmentUpdateRequest describes the payload for editing an assignment.
type AssignmentUpdateRequest struct {
	Description *string `json:"description" validate:"omitempty,min=10"`
	Points      *int    `json:"points" validate:"omitempty,min=1"`
	DueDate     *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// AssignmentResponse is the serialized representation returned to API clients.
// Status carries the view-time overdue label.
type AssignmentResponse struct {
	ID          uint      `json:"id"`
	StudentID   uint      `json:"student_id"`
	TeacherID   uint      `json:"teacher_id"`
	TaskType    string    `json:"task_type"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	DueDate     time.Time `json:"due_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewAssignmentResponse converts a model into a DTO, deriving the overdue
// label against the given instant.
func NewAssignmentResponse(model models.Assignment, now time.Time) AssignmentResponse {
	return AssignmentResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		TeacherID:   model.TeacherID,
		TaskType:    model.TaskType,
		Description: model.Description,
		Points:      model.Points,
		DueDate:     model.DueDate,
		Status:      model.DisplayStatus(now),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment, now time.Time) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment, now))
	}

	return responses
}
