package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/repository"
)

const recentSubmissionLimit = 5

// DashboardService produces the aggregated per-student dashboard view.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error)
	Invalidate(ctx context.Context, userID uint)
}

type dashboardService struct {
	users       repository.UserRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	progression ProgressionService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDashboardService builds the dashboard aggregator. The cache client may
// be nil; every read then rebuilds from the repositories.
func NewDashboardService(
	users repository.UserRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	progression ProgressionService,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		users:       users,
		assignments: assignments,
		submissions: submissions,
		progression: progression,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	cacheKey := dashboardCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("dashboard cache hit")
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	response, err := s.buildResponse(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached dashboard after a statistic-changing event.
func (s *dashboardService) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate dashboard cache")
	}
}

func (s *dashboardService) buildResponse(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DashboardResponse{}, ErrUserNotFound
		}
		return dto.DashboardResponse{}, err
	}

	progress, err := s.progression.Progress(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	assignments, err := s.assignments.ListByStudent(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	now := s.now()
	summary := dto.DashboardSummary{
		Points:             user.Points,
		TotalSubmissions:   len(submissions),
		ApprovedTasks:      progress.ApprovedTasks,
		AchievementsEarned: len(user.Achievements),
		BadgesEarned:       len(user.Badges),
		CompletedLevels:    len(user.CompletedLevels),
	}

	for _, assignment := range assignments {
		switch assignment.DisplayStatus(now) {
		case models.AssignmentStatusCompleted:
			summary.CompletedTasks++
		case models.AssignmentStatusOverdue:
			summary.OverdueAssignments++
		default:
			summary.OpenAssignments++
		}
	}

	if total := len(progress.Achievements); total > 0 {
		summary.AchievementRate = float64(summary.AchievementsEarned) / float64(total) * 100
	}

	recent := submissions
	if len(recent) > recentSubmissionLimit {
		recent = recent[:recentSubmissionLimit]
	}

	return dto.DashboardResponse{
		UserID:            user.ID,
		Name:              user.Name,
		Summary:           summary,
		Achievements:      progress.Achievements,
		Badges:            progress.Badges,
		RecentSubmissions: dto.NewSubmissionResponseSlice(recent),
	}, nil
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:user:%d", userID)
}
