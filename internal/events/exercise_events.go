package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// EventType identifies the kind of exercise event.
type EventType string

const (
	// Grading events
	EventAnswerValidated EventType = "answer.validated"
	EventAnswerRejected  EventType = "answer.rejected"

	// Session events
	EventSessionCompleted EventType = "session.completed"

	// Content events
	EventContentGenerated EventType = "content.generated"
)

const (
	eventSource  = "exercise-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every exercise event.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Grading event payloads

type AnswerValidatedEvent struct {
	ContentID     string              `json:"content_id,omitempty"`
	SessionID     string              `json:"session_id,omitempty"`
	AttemptNumber int                 `json:"attempt_number,omitempty"`
	Kind          models.ExerciseKind `json:"kind"`
	Correct       bool                `json:"correct"`
	Score         int                 `json:"score"`
	MaxScore      int                 `json:"max_score"`
	Percentage    float64             `json:"percentage"`
}

// AnswerRejectedEvent records answers that could not be graded at all, so
// they are not mistaken for wrong answers.
type AnswerRejectedEvent struct {
	ContentID string              `json:"content_id,omitempty"`
	SessionID string              `json:"session_id,omitempty"`
	Kind      models.ExerciseKind `json:"kind"`
	Reason    string              `json:"reason"` // malformed_answer or unsupported_kind
	Error     string              `json:"error"`
}

// Session event payloads

type SessionCompletedEvent struct {
	SessionID       string              `json:"session_id"`
	UserID          string              `json:"user_id"`
	ContentID       string              `json:"content_id"`
	Kind            models.ExerciseKind `json:"kind"`
	Attempts        int                 `json:"attempts"`
	CorrectAttempts int                 `json:"correct_attempts"`
	Score           float64             `json:"score"`
	Difficulty      float64             `json:"difficulty"`
	NextDifficulty  float64             `json:"next_difficulty"`
	CompletedAt     time.Time           `json:"completed_at"`
}

// Content event payloads

type ContentGeneratedEvent struct {
	ContentIDs []string            `json:"content_ids"`
	Kind       models.ExerciseKind `json:"kind"`
	Topic      string              `json:"topic"`
	Requested  int                 `json:"requested"`
	Generated  int                 `json:"generated"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAnswerValidatedEvent(data AnswerValidatedEvent) *Event {
	return newEvent(EventAnswerValidated, data)
}

func NewAnswerRejectedEvent(data AnswerRejectedEvent) *Event {
	return newEvent(EventAnswerRejected, data)
}

func NewSessionCompletedEvent(data SessionCompletedEvent) *Event {
	return newEvent(EventSessionCompleted, data)
}

func NewContentGeneratedEvent(data ContentGeneratedEvent) *Event {
	return newEvent(EventContentGenerated, data)
}
