package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/exercise-service/internal/generator"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/services"
	"github.com/SAP-F-2025/exercise-service/internal/utils"
)

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) GetContent(ctx context.Context, id string) (models.Content, error) {
	args := m.Called(ctx, id)
	content, _ := args.Get(0).(models.Content)
	return content, args.Error(1)
}

func (m *MockContentService) Create(ctx context.Context, raw json.RawMessage) (*services.ContentResponse, error) {
	args := m.Called(ctx, raw)
	resp, _ := args.Get(0).(*services.ContentResponse)
	return resp, args.Error(1)
}

func (m *MockContentService) Get(ctx context.Context, id string) (*services.ContentResponse, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*services.ContentResponse)
	return resp, args.Error(1)
}

func (m *MockContentService) List(ctx context.Context, filters repositories.ContentFilters) ([]*services.ContentResponse, int64, error) {
	args := m.Called(ctx, filters)
	resp, _ := args.Get(0).([]*services.ContentResponse)
	return resp, args.Get(1).(int64), args.Error(2)
}

func (m *MockContentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContentService) Generate(ctx context.Context, opts generator.Options) (*services.ContentResponse, error) {
	args := m.Called(ctx, opts)
	resp, _ := args.Get(0).(*services.ContentResponse)
	return resp, args.Error(1)
}

func (m *MockContentService) GenerateBatch(ctx context.Context, opts generator.Options) (*services.BatchResponse, error) {
	args := m.Called(ctx, opts)
	resp, _ := args.Get(0).(*services.BatchResponse)
	return resp, args.Error(1)
}

type MockContentRepository struct {
	mock.Mock
}

func (m *MockContentRepository) Create(ctx context.Context, content *models.ExerciseContent) error {
	return m.Called(ctx, content).Error(0)
}

func (m *MockContentRepository) CreateBatch(ctx context.Context, contents []*models.ExerciseContent) error {
	return m.Called(ctx, contents).Error(0)
}

func (m *MockContentRepository) GetByID(ctx context.Context, id string) (*models.ExerciseContent, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*models.ExerciseContent)
	return record, args.Error(1)
}

func (m *MockContentRepository) List(ctx context.Context, filters repositories.ContentFilters) ([]*models.ExerciseContent, int64, error) {
	args := m.Called(ctx, filters)
	records, _ := args.Get(0).([]*models.ExerciseContent)
	return records, args.Get(1).(int64), args.Error(2)
}

func (m *MockContentRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Start(ctx context.Context, req *services.StartSessionRequest) (*models.GameSession, error) {
	args := m.Called(ctx, req)
	session, _ := args.Get(0).(*models.GameSession)
	return session, args.Error(1)
}

func (m *MockSessionService) SubmitAttempt(ctx context.Context, sessionID uint, req *services.SubmitAttemptRequest) (*services.AttemptResponse, error) {
	args := m.Called(ctx, sessionID, req)
	resp, _ := args.Get(0).(*services.AttemptResponse)
	return resp, args.Error(1)
}

func (m *MockSessionService) Get(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	args := m.Called(ctx, sessionID)
	session, _ := args.Get(0).(*models.GameSession)
	return session, args.Error(1)
}

func (m *MockSessionService) ListByUser(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.GameSession, int64, error) {
	args := m.Called(ctx, userID, filters)
	sessions, _ := args.Get(0).([]*models.GameSession)
	return sessions, args.Get(1).(int64), args.Error(2)
}

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportSessionAttempts(ctx context.Context, sessionID uint) ([]byte, error) {
	args := m.Called(ctx, sessionID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestRouter(svc ServiceSet) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandlerManager(svc, testLogger()).SetupRoutes(router)
	return router
}

func performRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
