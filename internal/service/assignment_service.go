package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/repository"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

const dueDateLayout = "2006-01-02"

// AssignmentService exposes the teacher-to-student task registry.
type AssignmentService interface {
	Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
	ListForStudent(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error)
	ListForTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error)
	MarkCompleted(ctx context.Context, studentID uint, taskType string) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, users repository.UserRepository, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		users:     users,
		validator: validate,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, teacherID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	dueDate, err := time.Parse(dueDateLayout, payload.DueDate)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: invalid due date", ErrValidation)
	}

	if s.pastDue(dueDate) {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: due date must not be in the past", ErrValidation)
	}

	student, err := s.users.GetByID(ctx, payload.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: student %d does not exist", ErrValidation, payload.StudentID)
		}
		return dto.AssignmentResponse{}, err
	}
	if student.Role != models.RoleStudent {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: user %d is not a student", ErrValidation, payload.StudentID)
	}

	assignment := models.Assignment{
		StudentID:   payload.StudentID,
		TeacherID:   teacherID,
		TaskType:    payload.TaskType,
		Description: payload.Description,
		Points:      payload.Points,
		DueDate:     dueDate,
		Status:      models.AssignmentStatusAssigned,
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", assignment.StudentID).
		Str("task_type", assignment.TaskType).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	if payload.Description != nil {
		assignment.Description = *payload.Description
	}

	if payload.Points != nil {
		assignment.Points = *payload.Points
	}

	if payload.DueDate != nil {
		dueDate, err := time.Parse(dueDateLayout, *payload.DueDate)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: invalid due date", ErrValidation)
		}
		if s.pastDue(dueDate) {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: due date must not be in the past", ErrValidation)
		}
		assignment.DueDate = dueDate
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment, s.now()), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

func (s *assignmentService) ListForStudent(ctx context.Context, studentID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, s.now()), nil
}

func (s *assignmentService) ListForTeacher(ctx context.Context, teacherID uint) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	return dto.NewAssignmentResponseSlice(assignments, s.now()), nil
}

// MarkCompleted closes the student's oldest open assignment of the task type.
// Having no matching assignment is not an error; free-form submissions are
// common.
func (s *assignmentService) MarkCompleted(ctx context.Context, studentID uint, taskType string) error {
	assignment, err := s.repo.FirstOpenByStudentAndType(ctx, studentID, taskType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	assignment.Status = models.AssignmentStatusCompleted
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", studentID).
		Str("task_type", taskType).
		Msg("assignment completed by submission")

	return nil
}

// pastDue applies the same calendar-day comparison the overdue label uses,
// so a due date is rejected exactly when it would already read as overdue.
func (s *assignmentService) pastDue(dueDate time.Time) bool {
	return models.Assignment{DueDate: dueDate}.IsPastDue(s.now())
}
