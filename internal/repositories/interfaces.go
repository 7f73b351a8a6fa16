package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrSessionClosed is returned when an attempt targets a completed session.
	ErrSessionClosed = errors.New("session already completed")
	// ErrDuplicate is returned when a record with the same key already exists.
	ErrDuplicate = errors.New("record already exists")
)

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type ContentFilters struct {
	Kind      *models.ExerciseKind  `json:"kind"`
	Topic     string                `json:"topic"`
	Language  string                `json:"language"`
	Source    *models.ContentSource `json:"source"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "difficulty", "title"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

type SessionFilters struct {
	Status *models.SessionStatus `json:"status"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// ===== REPOSITORIES =====

// ContentRepository stores exercise content.
type ContentRepository interface {
	Create(ctx context.Context, content *models.ExerciseContent) error
	CreateBatch(ctx context.Context, contents []*models.ExerciseContent) error
	GetByID(ctx context.Context, id string) (*models.ExerciseContent, error)
	List(ctx context.Context, filters ContentFilters) ([]*models.ExerciseContent, int64, error)
	Delete(ctx context.Context, id string) error
}

// SessionRepository stores game sessions and their attempts.
type SessionRepository interface {
	Create(ctx context.Context, session *models.GameSession) error
	// GetByID loads the session with its attempts ordered by number.
	GetByID(ctx context.Context, id uint) (*models.GameSession, error)
	GetByUser(ctx context.Context, userID string, filters SessionFilters) ([]*models.GameSession, int64, error)

	// AppendAttempt stores attempt and saves the session's updated state in
	// one transaction.
	AppendAttempt(ctx context.Context, session *models.GameSession, attempt *models.Attempt) error
}
