package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/catalog"
	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/models"
)

type memoryUserRepo struct {
	users   map[uint]models.User
	nextID  uint
	updates int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (m *memoryUserRepo) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ListByRole(_ context.Context, role string) ([]models.User, error) {
	results := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		if user.Role == role {
			results = append(results, user)
		}
	}
	return results, nil
}

func (m *memoryUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *memoryUserRepo) Update(_ context.Context, user *models.User) error {
	m.updates++
	m.users[user.ID] = *user
	return nil
}

type stubSubmissionCounts struct {
	approved int
	byType   map[string]int
}

func (s *stubSubmissionCounts) Create(_ context.Context, _ *models.TaskSubmission) error { return nil }

func (s *stubSubmissionCounts) GetByPublicID(_ context.Context, _ string) (models.TaskSubmission, error) {
	return models.TaskSubmission{}, gorm.ErrRecordNotFound
}

func (s *stubSubmissionCounts) ListByUser(_ context.Context, _ uint) ([]models.TaskSubmission, error) {
	return nil, nil
}

func (s *stubSubmissionCounts) CountApproved(_ context.Context, _ uint) (int64, error) {
	return int64(s.approved), nil
}

func (s *stubSubmissionCounts) CountApprovedByType(_ context.Context, _ uint) (map[string]int, error) {
	return s.byType, nil
}

type recordingNotifications struct {
	published []dto.NotificationCreateRequest
}

func (r *recordingNotifications) Publish(_ context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error) {
	r.published = append(r.published, payload)
	return dto.NotificationResponse{UserID: payload.UserID, Type: payload.Type, Message: payload.Message}, nil
}

func (r *recordingNotifications) List(_ context.Context, _ uint, _, _ int) ([]dto.NotificationResponse, error) {
	return nil, nil
}

func (r *recordingNotifications) MarkRead(_ context.Context, _ uint, _ uint) (dto.NotificationResponse, error) {
	return dto.NotificationResponse{}, nil
}

func (r *recordingNotifications) Subscribe(_ uint) (<-chan dto.NotificationResponse, func()) {
	ch := make(chan dto.NotificationResponse)
	close(ch)
	return ch, func() {}
}

func (r *recordingNotifications) Start(_ context.Context) {}

func mustLoadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	return cat
}

func newProgressionFixture(t *testing.T, user models.User, counts *stubSubmissionCounts) (*memoryUserRepo, *recordingNotifications, ProgressionService) {
	t.Helper()
	users := newMemoryUserRepo()
	require.NoError(t, users.Create(context.Background(), &user))

	notifications := &recordingNotifications{}
	svc := NewProgressionService(users, counts, mustLoadCatalog(t), notifications, zerolog.Nop())
	return users, notifications, svc
}

func TestEvaluateUnlocksFirstAchievement(t *testing.T) {
	counts := &stubSubmissionCounts{approved: 1, byType: map[string]int{"recycling": 1}}
	users, notifications, svc := newProgressionFixture(t, models.User{Name: "Ana", Email: "ana@school.test", Role: models.RoleStudent}, counts)

	result, err := svc.Evaluate(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, []string{"first_task"}, result.NewAchievements)
	require.Empty(t, result.NewBadges)

	stored := users.users[1]
	require.True(t, stored.HasAchievement("first_task"))
	require.Len(t, notifications.published, 1)
	require.Equal(t, models.NotificationTypeAchievement, notifications.published[0].Type)
}

func TestEvaluateCountsSamePassAchievementsForBadges(t *testing.T) {
	counts := &stubSubmissionCounts{
		approved: 12,
		byType:   map[string]int{"recycling": 4, "energy": 4, "water": 4},
	}
	user := models.User{
		Name:            "Ben",
		Email:           "ben@school.test",
		Role:            models.RoleStudent,
		Points:          150,
		CompletedLevels: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
	users, notifications, svc := newProgressionFixture(t, user, counts)

	result, err := svc.Evaluate(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, []string{
		"first_task", "task_master", "eco_warrior",
		"recycling_hero", "energy_saver", "water_guardian",
		"level_master", "point_collector",
	}, result.NewAchievements)
	require.Equal(t, []string{"bronze_eco", "silver_eco", "gold_eco", "platinum_eco"}, result.NewBadges)

	// achievements persisted before badge evaluation, then badges
	require.Equal(t, 2, users.updates)

	require.Len(t, notifications.published, 12)
	require.Equal(t, models.NotificationTypeAchievement, notifications.published[0].Type)
	require.Equal(t, models.NotificationTypeBadge, notifications.published[8].Type)
}

func TestEvaluateNothingNewWritesNothing(t *testing.T) {
	counts := &stubSubmissionCounts{approved: 0, byType: map[string]int{}}
	users, notifications, svc := newProgressionFixture(t, models.User{Name: "Cy", Email: "cy@school.test", Role: models.RoleStudent}, counts)

	result, err := svc.Evaluate(context.Background(), 1)
	require.NoError(t, err)

	require.Empty(t, result.NewAchievements)
	require.Empty(t, result.NewBadges)
	require.Zero(t, users.updates)
	require.Empty(t, notifications.published)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	counts := &stubSubmissionCounts{approved: 1, byType: map[string]int{"cleanup": 1}}
	users, _, svc := newProgressionFixture(t, models.User{Name: "Dee", Email: "dee@school.test", Role: models.RoleStudent}, counts)

	first, err := svc.Evaluate(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, first.NewAchievements)

	updatesAfterFirst := users.updates

	second, err := svc.Evaluate(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, second.NewAchievements)
	require.Empty(t, second.NewBadges)
	require.Equal(t, updatesAfterFirst, users.updates)
}

func TestEvaluateUnknownUser(t *testing.T) {
	counts := &stubSubmissionCounts{byType: map[string]int{}}
	_, _, svc := newProgressionFixture(t, models.User{Name: "Eve", Email: "eve@school.test", Role: models.RoleStudent}, counts)

	_, err := svc.Evaluate(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCompleteLevelAwardsPointsOnce(t *testing.T) {
	counts := &stubSubmissionCounts{byType: map[string]int{}}
	users, _, svc := newProgressionFixture(t, models.User{Name: "Fay", Email: "fay@school.test", Role: models.RoleStudent}, counts)

	response, err := svc.CompleteLevel(context.Background(), 1, dto.LevelCompleteRequest{LevelID: 3, Score: 5})
	require.NoError(t, err)
	require.Equal(t, 50, response.PointsAwarded)
	require.Equal(t, 50, response.TotalPoints)
	require.True(t, users.users[1].HasCompletedLevel(3))

	repeat, err := svc.CompleteLevel(context.Background(), 1, dto.LevelCompleteRequest{LevelID: 3, Score: 9})
	require.NoError(t, err)
	require.Zero(t, repeat.PointsAwarded)
	require.Equal(t, 50, repeat.TotalPoints)
	require.Len(t, users.users[1].CompletedLevels, 1)
}

func TestAwardPointsRejectsNegative(t *testing.T) {
	counts := &stubSubmissionCounts{byType: map[string]int{}}
	_, _, svc := newProgressionFixture(t, models.User{Name: "Gil", Email: "gil@school.test", Role: models.RoleStudent}, counts)

	_, err := svc.AwardPoints(context.Background(), 1, -5)
	require.Error(t, err)
}

func TestProgressReportsPartialAndCapped(t *testing.T) {
	counts := &stubSubmissionCounts{approved: 2, byType: map[string]int{"recycling": 2}}
	_, _, svc := newProgressionFixture(t, models.User{
		Name:         "Hana",
		Email:        "hana@school.test",
		Role:         models.RoleStudent,
		Points:       30,
		Achievements: []string{"first_task"},
	}, counts)

	progress, err := svc.Progress(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 30, progress.Points)
	require.Equal(t, 2, progress.ApprovedTasks)

	byID := map[string]dto.AchievementStatusResponse{}
	for _, achievement := range progress.Achievements {
		byID[achievement.ID] = achievement
	}

	require.True(t, byID["first_task"].Unlocked)
	require.InDelta(t, 100, byID["first_task"].Progress, 1e-9)
	require.False(t, byID["task_master"].Unlocked)
	require.InDelta(t, 40, byID["task_master"].Progress, 1e-9)
	require.InDelta(t, float64(2)/3*100, byID["recycling_hero"].Progress, 1e-9)
	require.InDelta(t, 30, byID["point_collector"].Progress, 1e-9)
}
