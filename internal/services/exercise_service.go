package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/exercise-service/internal/events"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/scoring"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
)

// ===== REQUESTS =====

// ContentRef names the content to grade against: either inline content or
// the id of stored content. Inline content wins when both are set.
type ContentRef struct {
	Content   json.RawMessage `json:"content,omitempty"`
	ContentID string          `json:"content_id,omitempty" validate:"omitempty,max=36"`
}

type AnswerRequest struct {
	ContentRef
	Answer json.RawMessage `json:"answer"`
}

type FeedbackRequest struct {
	ContentRef
	Answer  json.RawMessage `json:"answer"`
	Correct bool            `json:"correct"`
}

type HintRequest struct {
	ContentRef
	AttemptNumber int `json:"attempt_number" validate:"min=0"`
}

type DifficultyRequest struct {
	CurrentDifficulty float64 `json:"current_difficulty" validate:"min=0,max=1"`
	Performance       float64 `json:"performance" validate:"min=0,max=1"`
}

// ===== RESPONSES =====

type ScoreResponse struct {
	Score  float64                  `json:"score"`
	Result *models.ValidationResult `json:"result"`
}

type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

type HintResponse struct {
	Hint *string `json:"hint"`
}

type DifficultyResponse struct {
	Difficulty float64 `json:"difficulty"`
}

// ContentLoader resolves stored content by id.
type ContentLoader interface {
	GetContent(ctx context.Context, id string) (models.Content, error)
}

// ===== SERVICE =====

// ExerciseService exposes the scoring engine to the transport layer.
type ExerciseService interface {
	Validate(ctx context.Context, req *AnswerRequest) (*models.ValidationResult, error)
	Score(ctx context.Context, req *AnswerRequest) (*ScoreResponse, error)
	Feedback(ctx context.Context, req *FeedbackRequest) (*FeedbackResponse, error)
	Hint(ctx context.Context, req *HintRequest) (*HintResponse, error)
	AdaptDifficulty(ctx context.Context, req *DifficultyRequest) (*DifficultyResponse, error)
}

type exerciseService struct {
	engine    *scoring.Engine
	contents  ContentLoader
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
}

// NewExerciseService wires the engine to content lookup and event
// publishing. contents and publisher may be nil.
func NewExerciseService(engine *scoring.Engine, contents ContentLoader, publisher events.EventPublisher, v *validator.Validator, logger *slog.Logger) ExerciseService {
	return &exerciseService{
		engine:    engine,
		contents:  contents,
		publisher: publisher,
		validator: v,
		logger:    NewServiceLogger(logger, LogConfig{Service: "exercise-service", Component: "exercise"}),
	}
}

func (s *exerciseService) Validate(ctx context.Context, req *AnswerRequest) (result *models.ValidationResult, err error) {
	op := s.logger.WithOperation(ctx, "validate_answer", "")
	content, err := s.resolve(ctx, &req.ContentRef)
	if err != nil {
		op.LogResult(req.ContentID, "content", err)
		return nil, err
	}
	defer func() { op.LogResult(content.Base().ID, string(content.ExerciseKind()), err) }()

	result, err = s.engine.ValidateAnswer(content, answerValue(req.Answer))
	s.publishGrading(ctx, content, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *exerciseService) Score(ctx context.Context, req *AnswerRequest) (*ScoreResponse, error) {
	result, err := s.Validate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &ScoreResponse{Score: result.Percentage(), Result: result}, nil
}

func (s *exerciseService) Feedback(ctx context.Context, req *FeedbackRequest) (resp *FeedbackResponse, err error) {
	op := s.logger.WithOperation(ctx, "generate_feedback", "")
	content, err := s.resolve(ctx, &req.ContentRef)
	if err != nil {
		op.LogResult(req.ContentID, "content", err)
		return nil, err
	}
	defer func() { op.LogResult(content.Base().ID, string(content.ExerciseKind()), err) }()

	feedback, err := s.engine.GenerateFeedback(content, answerValue(req.Answer), req.Correct)
	if err != nil {
		return nil, err
	}
	return &FeedbackResponse{Feedback: feedback}, nil
}

func (s *exerciseService) Hint(ctx context.Context, req *HintRequest) (resp *HintResponse, err error) {
	op := s.logger.WithOperation(ctx, "get_hint", "")
	if err = s.validator.Validate(req); err != nil {
		op.LogResult(req.ContentID, "content", err)
		return nil, err
	}
	content, err := s.resolve(ctx, &req.ContentRef)
	if err != nil {
		op.LogResult(req.ContentID, "content", err)
		return nil, err
	}
	defer func() { op.LogResult(content.Base().ID, string(content.ExerciseKind()), err) }()

	hint, err := s.engine.GetHint(content, req.AttemptNumber)
	if err != nil {
		return nil, err
	}
	return &HintResponse{Hint: hint}, nil
}

func (s *exerciseService) AdaptDifficulty(ctx context.Context, req *DifficultyRequest) (*DifficultyResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	next := s.engine.AdaptDifficulty(req.CurrentDifficulty, req.Performance)
	s.logger.Debug(ctx, "difficulty adapted",
		"current", req.CurrentDifficulty,
		"performance", req.Performance,
		"next", next)
	return &DifficultyResponse{Difficulty: next}, nil
}

// resolve parses inline content or loads it by id.
func (s *exerciseService) resolve(ctx context.Context, ref *ContentRef) (models.Content, error) {
	if err := s.validator.Validate(ref); err != nil {
		return nil, err
	}
	if len(ref.Content) > 0 {
		return s.validator.Content().ParseContent(ref.Content)
	}
	if ref.ContentID == "" {
		return nil, fmt.Errorf("%w: content or content_id is required", ErrBadRequest)
	}
	if s.contents == nil {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, ref.ContentID)
	}
	return s.contents.GetContent(ctx, ref.ContentID)
}

func (s *exerciseService) publishGrading(ctx context.Context, content models.Content, result *models.ValidationResult, gradeErr error) {
	if s.publisher == nil {
		return
	}

	var event *events.Event
	switch {
	case gradeErr == nil:
		event = events.NewAnswerValidatedEvent(events.AnswerValidatedEvent{
			ContentID:  content.Base().ID,
			Kind:       content.ExerciseKind(),
			Correct:    result.Correct,
			Score:      result.Score,
			MaxScore:   result.MaxScore,
			Percentage: result.Percentage(),
		})
	case IsMalformedAnswer(gradeErr) || IsUnsupportedKind(gradeErr):
		event = events.NewAnswerRejectedEvent(events.AnswerRejectedEvent{
			ContentID: content.Base().ID,
			Kind:      content.ExerciseKind(),
			Reason:    rejectionReason(gradeErr),
			Error:     gradeErr.Error(),
		})
	default:
		return
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn(ctx, "failed to publish grading event", "event_type", event.Type, "error", err)
	}
}

func rejectionReason(err error) string {
	if IsUnsupportedKind(err) {
		return "unsupported_kind"
	}
	return "malformed_answer"
}

// answerValue maps an absent answer to nil.
func answerValue(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
