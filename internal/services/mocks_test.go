package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/scoring"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

// MockContentRepository is a mock implementation of ContentRepository
type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, content *models.ExerciseContent) error {
	args := m.Called(ctx, content)
	return args.Error(0)
}

func (m *MockContentRepository) CreateBatch(ctx context.Context, contents []*models.ExerciseContent) error {
	args := m.Called(ctx, contents)
	return args.Error(0)
}

func (m *MockContentRepository) GetByID(ctx context.Context, id string) (*models.ExerciseContent, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.ExerciseContent), args.Error(1)
}

func (m *MockContentRepository) List(ctx context.Context, filters repositories.ContentFilters) ([]*models.ExerciseContent, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.ExerciseContent), args.Get(1).(int64), args.Error(2)
}

func (m *MockContentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.GameSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id uint) (*models.GameSession, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.GameSession), args.Error(1)
}

func (m *MockSessionRepository) GetByUser(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.GameSession, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.GameSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRepository) AppendAttempt(ctx context.Context, session *models.GameSession, attempt *models.Attempt) error {
	args := m.Called(ctx, session, attempt)
	return args.Error(0)
}

// MockCacheService is a mock implementation of cache.CacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type contentLoaderFunc func(ctx context.Context, id string) (models.Content, error)

func (f contentLoaderFunc) GetContent(ctx context.Context, id string) (models.Content, error) {
	return f(ctx, id)
}

// staticContents serves the given instances by id.
func staticContents(contents ...models.Content) ContentLoader {
	byID := make(map[string]models.Content, len(contents))
	for _, c := range contents {
		byID[c.Base().ID] = c
	}
	return contentLoaderFunc(func(ctx context.Context, id string) (models.Content, error) {
		if c, ok := byID[id]; ok {
			return c, nil
		}
		return nil, ErrContentNotFound
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func firstPick() *scoring.Engine {
	return scoring.NewEngine(scoring.WithRandom(scoring.RandomFunc(func(n int) int { return 0 })))
}

func mustParse(t *testing.T, raw string) models.Content {
	t.Helper()
	content, err := validator.ParseContent([]byte(raw))
	require.NoError(t, err)
	return content
}

const (
	trueFalseJSON = `{"kind":"true_false","id":"tf-1","statement":"Water boils at 100°C at sea level.","correct":true,"difficulty":4}`
	mcqJSON       = `{"kind":"multiple_choice","id":"mcq-1","question":"Capital of France?","choices":[{"id":"a","text":"Paris","correct":true},{"id":"b","text":"Rome"}]}`
	dragDropJSON  = `{"kind":"drag_drop","id":"dd-1","items":[{"id":"i1","text":"Cat","target_zone":"mammal"},{"id":"i2","text":"Dog","target_zone":"mammal"},{"id":"i3","text":"Eagle","target_zone":"bird"}],"zones":[{"id":"mammal","label":"Mammals"},{"id":"bird","label":"Birds"}]}`
	crosswordJSON = `{"kind":"crossword","id":"cw-1","title":"Animals","grid":[["c","a","t"]]}`
)
