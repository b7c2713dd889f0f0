package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/catalog"
	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/repository"
	"github.com/econova/econova-api/internal/scoring"
)

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrValidation marks rejected input. Handlers map it to a 400.
var ErrValidation = errors.New("validation failed")

// Points awarded for a free-form submission without a catalog template.
const freeFormPoints = 10

// FileUploader abstracts uploading binary data and returning a URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService runs the evidence pipeline: validate, sanitize, upload,
// score, persist, then feed the verdict into progression.
type SubmissionService interface {
	Submit(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest, image *multipart.FileHeader) (dto.SubmissionResultResponse, error)
	Get(ctx context.Context, publicID string) (dto.SubmissionResponse, error)
	ListForUser(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo          repository.SubmissionRepository
	catalog       *catalog.Catalog
	scorer        *scoring.Scorer
	uploader      FileUploader
	progression   ProgressionService
	assignments   AssignmentService
	notifications NotificationService
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	maxImageBytes int64
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewSubmissionService builds the submission pipeline. Uploader and
// notifications may be nil; images are then scored without a stored URL and
// verdicts are not fanned out.
func NewSubmissionService(
	repo repository.SubmissionRepository,
	cat *catalog.Catalog,
	scorer *scoring.Scorer,
	uploader FileUploader,
	progression ProgressionService,
	assignments AssignmentService,
	notifications NotificationService,
	validate *validator.Validate,
	maxImageBytes int64,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		repo:          repo,
		catalog:       cat,
		scorer:        scorer,
		uploader:      uploader,
		progression:   progression,
		assignments:   assignments,
		notifications: notifications,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		maxImageBytes: maxImageBytes,
		logger:        logger.With().Str("component", "submission_service").Logger(),
		tracer:        otel.Tracer("github.com/econova/econova-api/internal/service/submission"),
	}
}

func (s *submissionService) Submit(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest, image *multipart.FileHeader) (dto.SubmissionResultResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submissions.submit", trace.WithAttributes(
		attribute.Int64("user_id", int64(userID)),
		attribute.String("task_type", payload.TaskType),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResultResponse{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	description := strings.TrimSpace(s.sanitizer.Sanitize(payload.Description))
	if len(description) < 10 {
		return dto.SubmissionResultResponse{}, fmt.Errorf("%w: description too short after sanitization", ErrValidation)
	}

	taskType := strings.ToLower(strings.TrimSpace(payload.TaskType))

	points := freeFormPoints
	if payload.TemplateID != "" {
		template, ok := s.catalog.TaskByID(payload.TemplateID)
		if !ok {
			return dto.SubmissionResultResponse{}, fmt.Errorf("%w: unknown task template %q", ErrValidation, payload.TemplateID)
		}
		if template.Category != taskType {
			return dto.SubmissionResultResponse{}, fmt.Errorf("%w: template %q does not belong to task type %q", ErrValidation, payload.TemplateID, taskType)
		}
		points = template.Points
	}

	var imageData []byte
	imageURL := ""
	if image != nil {
		data, err := s.readImage(image)
		if err != nil {
			return dto.SubmissionResultResponse{}, err
		}
		imageData = data

		if s.uploader != nil {
			url, err := s.uploader.Upload(ctx, image.Filename, bytes.NewReader(data))
			if err != nil {
				return dto.SubmissionResultResponse{}, fmt.Errorf("failed to store evidence image: %w", err)
			}
			imageURL = url
		}
	}

	verdict := s.scorer.Score(ctx, scoring.Input{
		TaskType:    taskType,
		Description: description,
		Image:       imageData,
	})

	status := models.SubmissionStatusRejected
	if verdict.Passed {
		status = models.SubmissionStatusApproved
	}

	confidence := verdict.Confidence
	submission := models.TaskSubmission{
		PublicID:    uuid.NewString(),
		UserID:      userID,
		TaskType:    taskType,
		TemplateID:  payload.TemplateID,
		Description: description,
		ImageURL:    imageURL,
		Status:      status,
		Confidence:  &confidence,
		Feedback:    verdict.Feedback,
	}

	if err := s.repo.Create(ctx, &submission); err != nil {
		return dto.SubmissionResultResponse{}, err
	}

	result := dto.SubmissionResultResponse{
		SubmissionResponse: dto.NewSubmissionResponse(submission),
		NewAchievements:    []string{},
		NewBadges:          []string{},
	}

	s.logger.Info().
		Uint("user_id", userID).
		Str("submission_id", submission.PublicID).
		Str("task_type", taskType).
		Str("status", status).
		Float64("confidence", confidence).
		Msg("submission scored")

	if !verdict.Passed {
		s.notifyVerdict(ctx, userID, fmt.Sprintf("Your %s submission was not approved. %s", taskType, verdict.Feedback))
		return result, nil
	}

	if _, err := s.progression.AwardPoints(ctx, userID, points); err != nil {
		return dto.SubmissionResultResponse{}, err
	}
	result.PointsAwarded = points

	if s.assignments != nil {
		if err := s.assignments.MarkCompleted(ctx, userID, taskType); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Str("task_type", taskType).Msg("failed to close matching assignment")
		}
	}

	evaluation, err := s.progression.Evaluate(ctx, userID)
	if err != nil {
		return dto.SubmissionResultResponse{}, err
	}
	result.NewAchievements = evaluation.NewAchievements
	result.NewBadges = evaluation.NewBadges

	s.notifyVerdict(ctx, userID, fmt.Sprintf("Your %s submission was approved! You earned %d points.", taskType, points))

	return result, nil
}

func (s *submissionService) Get(ctx context.Context, publicID string) (dto.SubmissionResponse, error) {
	submission, err := s.repo.GetByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListForUser(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) readImage(image *multipart.FileHeader) ([]byte, error) {
	if s.maxImageBytes > 0 && image.Size > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrValidation, s.maxImageBytes)
	}

	src, err := image.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, fmt.Errorf("%w: evidence must be an image, got %s", ErrValidation, detected.String())
	}

	return data, nil
}

func (s *submissionService) notifyVerdict(ctx context.Context, userID uint, message string) {
	if s.notifications == nil {
		return
	}

	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  userID,
		Type:    models.NotificationTypeSubmission,
		Message: message,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to publish verdict notification")
	}
}
