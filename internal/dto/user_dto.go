package dto

import (
	"time"

	"github.com/econova/econova-api/internal/models"
)

// UserRegisterRequest describes the payload for creating a new account.
type UserRegisterRequest struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=student teacher"`
}

// UserResponse is the serialized representation returned to API clients.
type UserResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	Points          int       `json:"points"`
	Achievements    []string  `json:"achievements"`
	Badges          []string  `json:"badges"`
	CompletedLevels []int     `json:"completed_levels"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	achievements := make([]string, 0, len(model.Achievements))
	achievements = append(achievements, model.Achievements...)

	badges := make([]string, 0, len(model.Badges))
	badges = append(badges, model.Badges...)

	levels := make([]int, 0, len(model.CompletedLevels))
	levels = append(levels, model.CompletedLevels...)

	return UserResponse{
		ID:              model.ID,
		Name:            model.Name,
		Email:           model.Email,
		Role:            model.Role,
		Points:          model.Points,
		Achievements:    achievements,
		Badges:          badges,
		CompletedLevels: levels,
		CreatedAt:       model.CreatedAt,
	}
}

// NewUserResponseSlice converts a slice of models into DTOs.
func NewUserResponseSlice(users []models.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, NewUserResponse(user))
	}

	return responses
}
