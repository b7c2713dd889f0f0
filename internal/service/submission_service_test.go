package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/econova/econova-api/internal/dto"
	"github.com/econova/econova-api/internal/models"
	"github.com/econova/econova-api/internal/scoring"
)

type memorySubmissionRepo struct {
	submissions []models.TaskSubmission
	nextID      uint
}

func newMemorySubmissionRepo() *memorySubmissionRepo {
	return &memorySubmissionRepo{nextID: 1}
}

func (m *memorySubmissionRepo) Create(_ context.Context, submission *models.TaskSubmission) error {
	submission.ID = m.nextID
	m.nextID++
	m.submissions = append(m.submissions, *submission)
	return nil
}

func (m *memorySubmissionRepo) GetByPublicID(_ context.Context, publicID string) (models.TaskSubmission, error) {
	for _, submission := range m.submissions {
		if submission.PublicID == publicID {
			return submission, nil
		}
	}
	return models.TaskSubmission{}, gorm.ErrRecordNotFound
}

func (m *memorySubmissionRepo) ListByUser(_ context.Context, userID uint) ([]models.TaskSubmission, error) {
	results := make([]models.TaskSubmission, 0, len(m.submissions))
	for _, submission := range m.submissions {
		if submission.UserID == userID {
			results = append(results, submission)
		}
	}
	return results, nil
}

func (m *memorySubmissionRepo) CountApproved(_ context.Context, userID uint) (int64, error) {
	var count int64
	for _, submission := range m.submissions {
		if submission.UserID == userID && submission.IsApproved() {
			count++
		}
	}
	return count, nil
}

func (m *memorySubmissionRepo) CountApprovedByType(_ context.Context, userID uint) (map[string]int, error) {
	counts := make(map[string]int)
	for _, submission := range m.submissions {
		if submission.UserID == userID && submission.IsApproved() {
			counts[submission.TaskType]++
		}
	}
	return counts, nil
}

type recordingProgression struct {
	awarded    []int
	evaluated  int
	evaluation EvaluationResult
}

func (r *recordingProgression) Evaluate(_ context.Context, _ uint) (EvaluationResult, error) {
	r.evaluated++
	return r.evaluation, nil
}

func (r *recordingProgression) AwardPoints(_ context.Context, _ uint, points int) (int, error) {
	r.awarded = append(r.awarded, points)
	return points, nil
}

func (r *recordingProgression) CompleteLevel(_ context.Context, _ uint, _ dto.LevelCompleteRequest) (dto.LevelCompleteResponse, error) {
	return dto.LevelCompleteResponse{}, nil
}

func (r *recordingProgression) Progress(_ context.Context, _ uint) (dto.ProgressResponse, error) {
	return dto.ProgressResponse{}, nil
}

type recordingAssignments struct {
	completed []string
}

func (r *recordingAssignments) Create(_ context.Context, _ uint, _ dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	return dto.AssignmentResponse{}, nil
}

func (r *recordingAssignments) Update(_ context.Context, _ uint, _ dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	return dto.AssignmentResponse{}, nil
}

func (r *recordingAssignments) Delete(_ context.Context, _ uint) error { return nil }

func (r *recordingAssignments) ListForStudent(_ context.Context, _ uint) ([]dto.AssignmentResponse, error) {
	return nil, nil
}

func (r *recordingAssignments) ListForTeacher(_ context.Context, _ uint) ([]dto.AssignmentResponse, error) {
	return nil, nil
}

func (r *recordingAssignments) MarkCompleted(_ context.Context, _ uint, taskType string) error {
	r.completed = append(r.completed, taskType)
	return nil
}

type stubUploader struct {
	url      string
	uploads  int
	lastName string
}

func (s *stubUploader) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	s.uploads++
	s.lastName = name
	_, _ = io.Copy(io.Discard, reader)
	return s.url, nil
}

type submissionFixture struct {
	repo        *memorySubmissionRepo
	progression *recordingProgression
	assignments *recordingAssignments
	uploader    *stubUploader
	svc         SubmissionService
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()

	repo := newMemorySubmissionRepo()
	progression := &recordingProgression{evaluation: EvaluationResult{NewAchievements: []string{}, NewBadges: []string{}}}
	assignments := &recordingAssignments{}
	uploader := &stubUploader{url: "https://cdn.example.com/evidence.png"}
	scorer := scoring.NewScorer(nil, scoring.DefaultThreshold, zerolog.Nop())

	svc := NewSubmissionService(
		repo,
		mustLoadCatalog(t),
		scorer,
		uploader,
		progression,
		assignments,
		nil,
		validator.New(),
		1<<20,
		zerolog.Nop(),
	)

	return &submissionFixture{
		repo:        repo,
		progression: progression,
		assignments: assignments,
		uploader:    uploader,
		svc:         svc,
	}
}

const approvableDescription = "I recycled all the plastic bottles and paper from our classroom and dropped the glass jars at the neighborhood collection point."

func TestSubmitApprovedWithTemplateAwardsTemplatePoints(t *testing.T) {
	fixture := newSubmissionFixture(t)

	result, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		TemplateID:  "recycling-2",
		Description: approvableDescription,
	}, nil)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusApproved, result.Status)
	require.NotNil(t, result.Confidence)
	require.InDelta(t, 0.80, *result.Confidence, 1e-9)
	require.Equal(t, 25, result.PointsAwarded)
	require.Equal(t, []int{25}, fixture.progression.awarded)
	require.Equal(t, 1, fixture.progression.evaluated)
	require.Equal(t, []string{"recycling"}, fixture.assignments.completed)
	require.NotEmpty(t, result.PublicID)
}

func TestSubmitApprovedWithoutTemplateAwardsFlatPoints(t *testing.T) {
	fixture := newSubmissionFixture(t)

	result, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		Description: approvableDescription,
	}, nil)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusApproved, result.Status)
	require.Equal(t, freeFormPoints, result.PointsAwarded)
}

func TestSubmitRejectedAwardsNothing(t *testing.T) {
	fixture := newSubmissionFixture(t)

	result, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "energy",
		Description: "finished my chores",
	}, nil)
	require.NoError(t, err)

	require.Equal(t, models.SubmissionStatusRejected, result.Status)
	require.Zero(t, result.PointsAwarded)
	require.Empty(t, fixture.progression.awarded)
	require.Zero(t, fixture.progression.evaluated)
	require.Empty(t, fixture.assignments.completed)
	require.NotEmpty(t, result.Feedback)
}

func TestSubmitRejectsUnknownTemplate(t *testing.T) {
	fixture := newSubmissionFixture(t)

	_, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		TemplateID:  "recycling-99",
		Description: approvableDescription,
	}, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSubmitRejectsTemplateFromOtherCategory(t *testing.T) {
	fixture := newSubmissionFixture(t)

	_, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "energy",
		TemplateID:  "recycling-1",
		Description: approvableDescription,
	}, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSubmitSanitizesDescription(t *testing.T) {
	fixture := newSubmissionFixture(t)

	result, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		Description: "<script>alert('x')</script>" + approvableDescription,
	}, nil)
	require.NoError(t, err)

	require.NotContains(t, result.Description, "<script>")
	require.Contains(t, result.Description, "recycled all the plastic")
}

func TestSubmitRejectsEmptyAfterSanitization(t *testing.T) {
	fixture := newSubmissionFixture(t)

	_, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		Description: "<b></b><i></i><script>alert('boo')</script>",
	}, nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSubmitUploadsImageEvidence(t *testing.T) {
	fixture := newSubmissionFixture(t)

	png := append([]byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}, bytes.Repeat([]byte{0}, 64)...)
	header := multipartFile(t, "evidence.png", png)

	result, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		Description: approvableDescription,
	}, header)
	require.NoError(t, err)

	require.Equal(t, 1, fixture.uploader.uploads)
	require.Equal(t, "evidence.png", fixture.uploader.lastName)
	require.Equal(t, "https://cdn.example.com/evidence.png", result.ImageURL)
	// flat image bump on top of the keyword and length bonuses, clamped
	require.InDelta(t, 0.90, *result.Confidence, 1e-9)
}

func TestSubmitRejectsNonImageEvidence(t *testing.T) {
	fixture := newSubmissionFixture(t)

	header := multipartFile(t, "evidence.txt", []byte("plain text, not an image"))

	_, err := fixture.svc.Submit(context.Background(), 1, dto.SubmissionCreateRequest{
		TaskType:    "recycling",
		Description: approvableDescription,
	}, header)
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, fixture.uploader.uploads)
}

func TestGetReturnsNotFoundSentinel(t *testing.T) {
	fixture := newSubmissionFixture(t)

	_, err := fixture.svc.Get(context.Background(), "no-such-id")
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func multipartFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(4<<20))

	headers := req.MultipartForm.File["image"]
	require.Len(t, headers, 1)
	return headers[0]
}
