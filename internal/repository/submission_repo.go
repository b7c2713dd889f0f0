package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/models"
)

// SubmissionRepository defines persistence operations for task submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.TaskSubmission) error
	GetByPublicID(ctx context.Context, publicID string) (models.TaskSubmission, error)
	ListByUser(ctx context.Context, userID uint) ([]models.TaskSubmission, error)
	CountApproved(ctx context.Context, userID uint) (int64, error)
	CountApprovedByType(ctx context.Context, userID uint) (map[string]int, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.TaskSubmission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByPublicID(ctx context.Context, publicID string) (models.TaskSubmission, error) {
	var submission models.TaskSubmission
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&submission).Error; err != nil {
		return models.TaskSubmission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.TaskSubmission, error) {
	var submissions []models.TaskSubmission
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) CountApproved(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Where("user_id = ? AND status = ?", userID, models.SubmissionStatusApproved).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *submissionRepository) CountApprovedByType(ctx context.Context, userID uint) (map[string]int, error) {
	type row struct {
		TaskType string
		Total    int
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.TaskSubmission{}).
		Select("task_type, COUNT(*) AS total").
		Where("user_id = ? AND status = ?", userID, models.SubmissionStatusApproved).
		Group("task_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.TaskType] = r.Total
	}

	return counts, nil
}
