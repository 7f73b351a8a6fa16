package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, session *models.GameSession) error {
	if err := s.db.WithContext(ctx).Omit("Attempts", "Content").Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *SessionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.WithContext(ctx).
		Preload("Attempts", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		First(&session, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &session, nil
}

func (s *SessionPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.SessionFilters) ([]*models.GameSession, int64, error) {
	var sessions []*models.GameSession
	var total int64

	query := s.db.WithContext(ctx).Model(&models.GameSession{}).Where("user_id = ?", userID)
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, "started_at", "desc", map[string]bool{"started_at": true}, filters.Limit, filters.Offset)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// AppendAttempt locks the session row, so concurrent submissions for the
// same session are serialized and attempt numbers stay unique. The attempt
// must carry the number following the attempts already stored; a caller that
// graded against a stale read gets ErrDuplicate.
func (s *SessionPostgreSQL) AppendAttempt(ctx context.Context, session *models.GameSession, attempt *models.Attempt) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.GameSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, session.ID).Error; err != nil {
			return translateError(err)
		}
		if locked.Status == models.SessionCompleted {
			return fmt.Errorf("session %d: %w", session.ID, repositories.ErrSessionClosed)
		}

		var stored int64
		if err := tx.Model(&models.Attempt{}).Where("session_id = ?", session.ID).Count(&stored).Error; err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}
		if err := checkAttemptNumber(stored, attempt.Number); err != nil {
			return fmt.Errorf("session %d: %w", session.ID, err)
		}

		attempt.SessionID = session.ID
		if err := tx.Create(attempt).Error; err != nil {
			return fmt.Errorf("failed to create attempt: %w", translateError(err))
		}

		err := tx.Model(&models.GameSession{}).
			Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"status":          session.Status,
				"score":           session.Score,
				"next_difficulty": session.NextDifficulty,
				"completed_at":    session.CompletedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		return nil
	})
}

// checkAttemptNumber reports ErrDuplicate unless number directly follows the
// stored attempt count.
func checkAttemptNumber(stored int64, number int) error {
	if int64(number) != stored+1 {
		return fmt.Errorf("attempt %d after %d stored attempts: %w", number, stored, repositories.ErrDuplicate)
	}
	return nil
}
