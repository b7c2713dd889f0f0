package dto

import (
	"time"

	"github.com/econova/econova-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for handing in
// evidence. The image part, when present, is read from the request separately.
type SubmissionCreateRequest struct {
	TaskType    string `form:"task_type" json:"task_type" validate:"required,min=2,max=64"`
	TemplateID  string `form:"template_id" json:"template_id" validate:"omitempty,max=64"`
	Description string `form:"description" json:"description" validate:"required,min=10"`
}

// SubmissionResponse is the serialized representation of a stored submission.
type SubmissionResponse struct {
	PublicID    string    `json:"id"`
	TaskType    string    `json:"task_type"`
	TemplateID  string    `json:"template_id,omitempty"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Status      string    `json:"status"`
	Confidence  *float64  `json:"confidence"`
	Feedback    string    `json:"feedback"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmissionResultResponse is returned right after scoring. It extends the
// stored record with the progression changes the submission triggered.
type SubmissionResultResponse struct {
	SubmissionResponse
	PointsAwarded   int      `json:"points_awarded"`
	NewAchievements []string `json:"new_achievements"`
	NewBadges       []string `json:"new_badges"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.TaskSubmission) SubmissionResponse {
	return SubmissionResponse{
		PublicID:    model.PublicID,
		TaskType:    model.TaskType,
		TemplateID:  model.TemplateID,
		Description: model.Description,
		ImageURL:    model.ImageURL,
		Status:      model.Status,
		Confidence:  model.Confidence,
		Feedback:    model.Feedback,
		CreatedAt:   model.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.TaskSubmission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
