package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"github.com/SAP-F-2025/exercise-service/internal/scoring"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

const DefaultMaxAttempts = 3

type StartSessionRequest struct {
	UserID      string   `json:"user_id" validate:"required,max=64"`
	ContentID   string   `json:"content_id" validate:"required,max=36"`
	Difficulty  *float64 `json:"difficulty,omitempty" validate:"omitempty,min=0,max=1"`
	MaxAttempts int      `json:"max_attempts,omitempty" validate:"min=0,max=10"`
}

type SubmitAttemptRequest struct {
	Answer json.RawMessage `json:"answer"`
}

// AttemptResponse is the outcome of one submitted attempt.
type AttemptResponse struct {
	Attempt           *models.Attempt          `json:"attempt"`
	Result            *models.ValidationResult `json:"result"`
	Feedback          string                   `json:"feedback"`
	Hint              *string                  `json:"hint,omitempty"`
	Status            models.SessionStatus     `json:"status"`
	AttemptsRemaining int                      `json:"attempts_remaining"`
	NextDifficulty    *float64                 `json:"next_difficulty,omitempty"`
}

type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*models.GameSession, error)
	SubmitAttempt(ctx context.Context, sessionID uint, req *SubmitAttemptRequest) (*AttemptResponse, error)
	Get(ctx context.Context, sessionID uint) (*models.GameSession, error)
	ListByUser(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.GameSession, int64, error)
}

type sessionService struct {
	repo      repositories.SessionRepository
	contents  ContentLoader
	engine    *scoring.Engine
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time
}

func NewSessionService(repo repositories.SessionRepository, contents ContentLoader, engine *scoring.Engine, publisher events.EventPublisher, v *validator.Validator, logger *slog.Logger) SessionService {
	return &sessionService{
		repo:      repo,
		contents:  contents,
		engine:    engine,
		publisher: publisher,
		validator: v,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exercise-service", Component: "session"}),
		now:       time.Now,
	}
}

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (session *models.GameSession, err error) {
	op := s.logger.WithOperation(ctx, "start_session", req.UserID)
	defer func() {
		id := ""
		if session != nil {
			id = strconv.FormatUint(uint64(session.ID), 10)
		}
		op.LogResult(id, "session", err)
	}()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	content, err := s.contents.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}
	if !content.ExerciseKind().IsGradable() {
		return nil, NewBusinessRuleError("gradable_content",
			"sessions can only be started on content that can be graded",
			map[string]interface{}{"content_id": req.ContentID, "kind": content.ExerciseKind()})
	}

	// Content difficulty is on a 0-10 scale, session difficulty on 0-1.
	difficulty := content.Base().Difficulty / 10
	if req.Difficulty != nil {
		difficulty = *req.Difficulty
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}

	session = &models.GameSession{
		UserID:      req.UserID,
		ContentID:   req.ContentID,
		Status:      models.SessionInProgress,
		Difficulty:  difficulty,
		MaxAttempts: maxAttempts,
		StartedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// SubmitAttempt grades answer against the session's content and records it.
// The session completes on a correct answer or when its attempts run out;
// malformed answers are rejected without consuming an attempt.
func (s *sessionService) SubmitAttempt(ctx context.Context, sessionID uint, req *SubmitAttemptRequest) (resp *AttemptResponse, err error) {
	resourceID := strconv.FormatUint(uint64(sessionID), 10)
	op := s.logger.WithOperation(ctx, "submit_attempt", "")
	defer func() { op.LogResult(resourceID, "session", err) }()

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionCompleted {
		return nil, fmt.Errorf("%w: %d", ErrSessionCompleted, sessionID)
	}

	content, err := s.contents.GetContent(ctx, session.ContentID)
	if err != nil {
		return nil, err
	}

	answer := answerValue(req.Answer)
	result, err := s.engine.ValidateAnswer(content, answer)
	if err != nil {
		if IsMalformedAnswer(err) || IsUnsupportedKind(err) {
			s.publish(ctx, events.NewAnswerRejectedEvent(events.AnswerRejectedEvent{
				ContentID: session.ContentID,
				SessionID: resourceID,
				Kind:      content.ExerciseKind(),
				Reason:    rejectionReason(err),
				Error:     err.Error(),
			}))
		}
		return nil, err
	}

	feedback, err := s.engine.GenerateFeedback(content, answer, result.Correct)
	if err != nil {
		return nil, err
	}

	now := s.now()
	number := len(session.Attempts) + 1
	attempt := &models.Attempt{
		SessionID:   session.ID,
		Number:      number,
		Answer:      datatypes.JSON(req.Answer),
		Correct:     result.Correct,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		Percentage:  result.Percentage(),
		Feedback:    &feedback,
		SubmittedAt: now,
	}

	session.Score = attempt.Percentage
	completed := result.Correct || number >= session.MaxAttempts
	if completed {
		next := s.engine.AdaptDifficulty(session.Difficulty, performance(session.CorrectAttempts(), result.Correct, number))
		session.Status = models.SessionCompleted
		session.NextDifficulty = &next
		session.CompletedAt = &now
	}

	if err := s.repo.AppendAttempt(ctx, session, attempt); err != nil {
		switch {
		case errors.Is(err, repositories.ErrSessionClosed):
			return nil, fmt.Errorf("%w: %d", ErrSessionCompleted, sessionID)
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, fmt.Errorf("%w: attempt %d of session %d was already recorded", ErrConflict, number, sessionID)
		}
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}
	session.Attempts = append(session.Attempts, *attempt)

	resp = &AttemptResponse{
		Attempt:           attempt,
		Result:            result,
		Feedback:          feedback,
		Status:            session.Status,
		AttemptsRemaining: max(session.MaxAttempts-number, 0),
		NextDifficulty:    session.NextDifficulty,
	}
	if !completed {
		if resp.Hint, err = s.engine.GetHint(content, number+1); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.NewAnswerValidatedEvent(events.AnswerValidatedEvent{
		ContentID:     session.ContentID,
		SessionID:     resourceID,
		AttemptNumber: number,
		Kind:          content.ExerciseKind(),
		Correct:       result.Correct,
		Score:         result.Score,
		MaxScore:      result.MaxScore,
		Percentage:    attempt.Percentage,
	}))
	if completed {
		s.publish(ctx, events.NewSessionCompletedEvent(events.SessionCompletedEvent{
			SessionID:       resourceID,
			UserID:          session.UserID,
			ContentID:       session.ContentID,
			Kind:            content.ExerciseKind(),
			Attempts:        len(session.Attempts),
			CorrectAttempts: session.CorrectAttempts(),
			Score:           session.Score,
			Difficulty:      session.Difficulty,
			NextDifficulty:  *session.NextDifficulty,
			CompletedAt:     now,
		}))
	}
	return resp, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %d", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

func (s *sessionService) ListByUser(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.GameSession, int64, error) {
	sessions, total, err := s.repo.GetByUser(ctx, userID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, total, nil
}

func (s *sessionService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish session event", "event_type", event.Type, "error", err)
	}
}

// performance is the share of correct attempts once the latest attempt is
// counted.
func performance(previousCorrect int, latestCorrect bool, attempts int) float64 {
	correct := previousCorrect
	if latestCorrect {
		correct++
	}
	return float64(correct) / float64(attempts)
}
