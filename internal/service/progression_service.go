package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/catalog"
	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/observability"
	"github.com/econova/econova-api/internal/repository"
)

// ErrUserNotFound indicates the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

const levelScoreMultiplier = 10

// EvaluationResult lists the unlocks one evaluation pass produced, in
// catalog order.
type EvaluationResult struct {
	NewAchievements []string
	NewBadges       []string
}

// ProgressionService maintains points and the achievement and badge sets.
// It is the only writer of those fields; the sets never shrink.
type ProgressionService interface {
	Evaluate(ctx context.Context, userID uint) (EvaluationResult, error)
	AwardPoints(ctx context.Context, userID uint, points int) (int, error)
	CompleteLevel(ctx context.Context, userID uint, payload dto.LevelCompleteRequest) (dto.LevelCompleteResponse, error)
	Progress(ctx context.Context, userID uint) (dto.ProgressResponse, error)
}

type progressionService struct {
	users         repository.UserRepository
	submissions   repository.SubmissionRepository
	catalog       *catalog.Catalog
	notifications NotificationService
	logger        zerolog.Logger
	tracer        trace.Tracer
}

// NewProgressionService builds a progression service. The notification
// service may be nil; unlocks are then recorded without fan-out.
func NewProgressionService(users repository.UserRepository, submissions repository.SubmissionRepository, cat *catalog.Catalog, notifications NotificationService, logger zerolog.Logger) ProgressionService {
	return &progressionService{
		users:         users,
		submissions:   submissions,
		catalog:       cat,
		notifications: notifications,
		logger:        logger.With().Str("component", "progression_service").Logger(),
		tracer:        otel.Tracer("github.com/econova/econova-api/internal/service/progression"),
	}
}

// Evaluate recomputes the user's aggregate statistics and unlocks every
// achievement and badge whose requirement now holds. Achievements are
// persisted before badges are evaluated, so badge thresholds see the
// unlocks of the same pass.
func (s *progressionService) Evaluate(ctx context.Context, userID uint) (EvaluationResult, error) {
	ctx, span := s.tracer.Start(ctx, "progression.evaluate", trace.WithAttributes(
		attribute.Int64("user_id", int64(userID)),
	))
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EvaluationResult{}, ErrUserNotFound
		}
		return EvaluationResult{}, err
	}

	stats, err := s.collectStats(ctx, user)
	if err != nil {
		return EvaluationResult{}, err
	}

	result := EvaluationResult{
		NewAchievements: []string{},
		NewBadges:       []string{},
	}

	for _, achievement := range s.catalog.Achievements() {
		if user.HasAchievement(achievement.ID) {
			continue
		}
		if achievement.Requirement.MetBy(stats) {
			user.Achievements = append(user.Achievements, achievement.ID)
			result.NewAchievements = append(result.NewAchievements, achievement.ID)
		}
	}

	if len(result.NewAchievements) > 0 {
		if err := s.users.Update(ctx, &user); err != nil {
			return EvaluationResult{}, err
		}
	}

	stats.AchievementsEarned = len(user.Achievements)

	for _, badge := range s.catalog.Badges() {
		if user.HasBadge(badge.ID) {
			continue
		}
		if badge.Requirement.MetBy(stats) {
			user.Badges = append(user.Badges, badge.ID)
			result.NewBadges = append(result.NewBadges, badge.ID)
		}
	}

	if len(result.NewBadges) > 0 {
		if err := s.users.Update(ctx, &user); err != nil {
			return EvaluationResult{}, err
		}
	}

	s.notifyUnlocks(ctx, user, result)

	if len(result.NewAchievements) > 0 || len(result.NewBadges) > 0 {
		s.logger.Info().
			Uint("user_id", userID).
			Strs("achievements", result.NewAchievements).
			Strs("badges", result.NewBadges).
			Msg("progression unlocks awarded")
	}

	return result, nil
}

// AwardPoints adds points to the user's total and returns the new total.
func (s *progressionService) AwardPoints(ctx context.Context, userID uint, points int) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("points must not be negative")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	user.Points += points
	if err := s.users.Update(ctx, &user); err != nil {
		return 0, err
	}

	return user.Points, nil
}

// CompleteLevel records a finished game level, awards its points once, and
// re-evaluates unlocks. Repeating a level is not an error but awards nothing.
func (s *progressionService) CompleteLevel(ctx context.Context, userID uint, payload dto.LevelCompleteRequest) (dto.LevelCompleteResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LevelCompleteResponse{}, ErrUserNotFound
		}
		return dto.LevelCompleteResponse{}, err
	}

	response := dto.LevelCompleteResponse{
		LevelID:         payload.LevelID,
		TotalPoints:     user.Points,
		NewAchievements: []string{},
		NewBadges:       []string{},
	}

	if user.HasCompletedLevel(payload.LevelID) {
		return response, nil
	}

	points := payload.Score * levelScoreMultiplier
	user.CompletedLevels = append(user.CompletedLevels, payload.LevelID)
	user.Points += points

	if err := s.users.Update(ctx, &user); err != nil {
		return dto.LevelCompleteResponse{}, err
	}

	evaluation, err := s.Evaluate(ctx, userID)
	if err != nil {
		return dto.LevelCompleteResponse{}, err
	}

	response.PointsAwarded = points
	response.TotalPoints = user.Points
	response.NewAchievements = evaluation.NewAchievements
	response.NewBadges = evaluation.NewBadges

	return response, nil
}

// Progress reports the user's standing against every achievement and badge.
func (s *progressionService) Progress(ctx context.Context, userID uint) (dto.ProgressResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrUserNotFound
		}
		return dto.ProgressResponse{}, err
	}

	stats, err := s.collectStats(ctx, user)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	stats.AchievementsEarned = len(user.Achievements)

	achievements := make([]dto.AchievementStatusResponse, 0, len(s.catalog.Achievements()))
	for _, achievement := range s.catalog.Achievements() {
		unlocked := user.HasAchievement(achievement.ID)
		progress := achievement.Requirement.Progress(stats)
		if unlocked {
			progress = 100
		}
		achievements = append(achievements, dto.AchievementStatusResponse{
			ID:          achievement.ID,
			Title:       achievement.Title,
			Description: achievement.Description,
			Icon:        achievement.Icon,
			Unlocked:    unlocked,
			Progress:    progress,
		})
	}

	badges := make([]dto.BadgeStatusResponse, 0, len(s.catalog.Badges()))
	for _, badge := range s.catalog.Badges() {
		unlocked := user.HasBadge(badge.ID)
		progress := badge.Requirement.Progress(stats)
		if unlocked {
			progress = 100
		}
		badges = append(badges, dto.BadgeStatusResponse{
			ID:       badge.ID,
			Title:    badge.Title,
			Icon:     badge.Icon,
			Color:    badge.Color,
			Unlocked: unlocked,
			Progress: progress,
		})
	}

	return dto.ProgressResponse{
		Points:          user.Points,
		ApprovedTasks:   stats.ApprovedTasks,
		CompletedLevels: stats.CompletedLevels,
		Achievements:    achievements,
		Badges:          badges,
	}, nil
}

func (s *progressionService) collectStats(ctx context.Context, user models.User) (catalog.Stats, error) {
	approved, err := s.submissions.CountApproved(ctx, user.ID)
	if err != nil {
		return catalog.Stats{}, err
	}

	byType, err := s.submissions.CountApprovedByType(ctx, user.ID)
	if err != nil {
		return catalog.Stats{}, err
	}

	return catalog.Stats{
		ApprovedTasks:       int(approved),
		ApprovedTasksByType: byType,
		CompletedLevels:     len(user.CompletedLevels),
		Points:              user.Points,
		AchievementsEarned:  len(user.Achievements),
	}, nil
}

func (s *progressionService) notifyUnlocks(ctx context.Context, user models.User, result EvaluationResult) {
	if s.notifications == nil {
		return
	}

	for _, id := range result.NewAchievements {
		observability.AchievementUnlocks().WithLabelValues("achievement").Inc()
		title := id
		if def, ok := s.achievementByID(id); ok {
			title = def.Title
		}
		s.publishUnlock(ctx, user.ID, models.NotificationTypeAchievement, fmt.Sprintf("Achievement unlocked: %s", title))
	}

	for _, id := range result.NewBadges {
		observability.AchievementUnlocks().WithLabelValues("badge").Inc()
		title := id
		if def, ok := s.badgeByID(id); ok {
			title = def.Title
		}
		s.publishUnlock(ctx, user.ID, models.NotificationTypeBadge, fmt.Sprintf("Badge earned: %s", title))
	}
}

func (s *progressionService) publishUnlock(ctx context.Context, userID uint, kind, message string) {
	_, err := s.notifications.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  userID,
		Type:    kind,
		Message: message,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to publish unlock notification")
	}
}

func (s *progressionService) achievementByID(id string) (catalog.AchievementDefinition, bool) {
	for _, def := range s.catalog.Achievements() {
		if def.ID == id {
			return def, true
		}
	}
	return catalog.AchievementDefinition{}, false
}

func (s *progressionService) badgeByID(id string) (catalog.BadgeDefinition, bool) {
	for _, def := range s.catalog.Badges() {
		if def.ID == id {
			return def, true
		}
	}
	return catalog.BadgeDefinition{}, false
}
