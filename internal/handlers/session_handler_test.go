package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/services"
)

func newSessionRouter() (http.Handler, *MockSessionService, *MockExportService) {
	sessions := &MockSessionService{}
	export := &MockExportService{}
	return newTestRouter(ServiceSet{Session: sessions, Export: export}), sessions, export
}

func testSession() *models.GameSession {
	return &models.GameSession{
		ID:          7,
		UserID:      "learner-1",
		ContentID:   "tf-1",
		Status:      models.SessionInProgress,
		Difficulty:  0.4,
		MaxAttempts: 3,
		StartedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSessionHandler_Start(t *testing.T) {
	router, sessions, _ := newSessionRouter()
	sessions.On("Start", mock.Anything, &services.StartSessionRequest{UserID: "learner-1", ContentID: "tf-1"}).
		Return(testSession(), nil)

	w := performRequest(router, http.MethodPost, "/api/v1/sessions", `{"user_id":"learner-1","content_id":"tf-1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody[models.GameSession](t, w)
	assert.Equal(t, uint(7), body.ID)
	assert.Equal(t, models.SessionInProgress, body.Status)
	sessions.AssertExpectations(t)
}

func TestSessionHandler_StartUngradedContent(t *testing.T) {
	router, sessions, _ := newSessionRouter()
	sessions.On("Start", mock.Anything, mock.Anything).
		Return(nil, services.NewBusinessRuleError("gradable_content", "content kind cannot be graded", nil))

	w := performRequest(router, http.MethodPost, "/api/v1/sessions", `{"user_id":"learner-1","content_id":"cw-1"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeBody[ErrorResponse](t, w)
	assert.Equal(t, "gradable_content", resp.Details.(map[string]interface{})["rule"])
}

func TestSessionHandler_Get(t *testing.T) {
	router, sessions, _ := newSessionRouter()
	sessions.On("Get", mock.Anything, uint(7)).Return(testSession(), nil)
	sessions.On("Get", mock.Anything, uint(8)).Return(nil, services.ErrSessionNotFound)

	w := performRequest(router, http.MethodGet, "/api/v1/sessions/7", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/api/v1/sessions/8", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Session not found", decodeBody[ErrorResponse](t, w).Message)

	for _, id := range []string{"abc", "0", "-1"} {
		w = performRequest(router, http.MethodGet, "/api/v1/sessions/"+id, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
	sessions.AssertNumberOfCalls(t, "Get", 2)
}

func TestSessionHandler_SubmitAttempt(t *testing.T) {
	router, sessions, _ := newSessionRouter()
	hint := "Read the statement carefully."
	sessions.On("SubmitAttempt", mock.Anything, uint(7), &services.SubmitAttemptRequest{Answer: json.RawMessage(`false`)}).
		Return(&services.AttemptResponse{
			Attempt:           &models.Attempt{SessionID: 7, Number: 1, MaxScore: 1},
			Result:            &models.ValidationResult{MaxScore: 1},
			Feedback:          "Not quite.",
			Hint:              &hint,
			Status:            models.SessionInProgress,
			AttemptsRemaining: 2,
		}, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/sessions/7/attempts", `{"answer":false}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody[map[string]interface{}](t, w)
	assert.Equal(t, "in_progress", body["status"])
	assert.EqualValues(t, 2, body["attempts_remaining"])
	assert.Equal(t, hint, body["hint"])
	assert.NotContains(t, body, "next_difficulty")
	sessions.AssertExpectations(t)
}

func TestSessionHandler_SubmitAttemptErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"completed session", services.ErrSessionCompleted, http.StatusConflict, "Session already completed"},
		{"missing session", services.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
		{"concurrent attempt", services.ErrConflict, http.StatusConflict, "Resource conflict"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, sessions, _ := newSessionRouter()
			sessions.On("SubmitAttempt", mock.Anything, uint(7), mock.Anything).Return(nil, tt.err)

			w := performRequest(router, http.MethodPost, "/api/v1/sessions/7/attempts", `{"answer":true}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeBody[ErrorResponse](t, w).Message)
		})
	}
}

func TestSessionHandler_Export(t *testing.T) {
	router, _, export := newSessionRouter()
	export.On("ExportSessionAttempts", mock.Anything, uint(7)).Return([]byte("PK\x03\x04"), nil)
	export.On("ExportSessionAttempts", mock.Anything, uint(9)).Return(nil, services.ErrSessionNotFound)

	w := performRequest(router, http.MethodGet, "/api/v1/sessions/7/export", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="session-7.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, []byte("PK\x03\x04"), w.Body.Bytes())

	w = performRequest(router, http.MethodGet, "/api/v1/sessions/9/export", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_ListUserSessions(t *testing.T) {
	router, sessions, _ := newSessionRouter()
	status := models.SessionCompleted
	sessions.On("ListByUser", mock.Anything, "learner-1", repositories.SessionFilters{Status: &status, Limit: 20}).
		Return([]*models.GameSession{testSession()}, int64(1), nil)

	w := performRequest(router, http.MethodGet, "/api/v1/users/learner-1/sessions?status=completed", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]interface{}](t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 20, body["limit"])
	sessions.AssertExpectations(t)
}
