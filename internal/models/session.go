package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ContentSource string

const (
	SourceStatic    ContentSource = "static"
	SourceGenerated ContentSource = "generated"
)

// ExerciseContent is the persisted form of a Content instance.
type ExerciseContent struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	Kind       ExerciseKind   `json:"kind" gorm:"not null;size:40;index"`
	Title      string         `json:"title" gorm:"size:200"`
	Topic      string         `json:"topic" gorm:"size:200;index"`
	Language   string         `json:"language" gorm:"size:10"`
	Difficulty float64        `json:"difficulty"`
	Source     ContentSource  `json:"source" gorm:"size:20;default:static"`
	Payload    datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (ExerciseContent) TableName() string {
	return "exercise_contents"
}

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// GameSession belongs to one user and one content instance and accumulates
// the learner's attempts in order.
type GameSession struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         string        `json:"user_id" gorm:"not null;size:64;index"`
	ContentID      string        `json:"content_id" gorm:"not null;size:36;index"`
	Status         SessionStatus `json:"status" gorm:"size:20;default:in_progress;index"`
	Score          float64       `json:"score"`      // percentage of the latest attempt
	Difficulty     float64       `json:"difficulty"` // 0-1, starting difficulty
	NextDifficulty *float64      `json:"next_difficulty"`
	MaxAttempts    int           `json:"max_attempts" gorm:"default:3"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`

	// Relations
	Attempts []Attempt       `json:"attempts" gorm:"foreignKey:SessionID"`
	Content  ExerciseContent `json:"-" gorm:"foreignKey:ContentID"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

// CorrectAttempts counts the attempts graded as correct.
func (s *GameSession) CorrectAttempts() int {
	count := 0
	for _, a := range s.Attempts {
		if a.Correct {
			count++
		}
	}
	return count
}

type Attempt struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	SessionID   uint           `json:"session_id" gorm:"not null;uniqueIndex:idx_attempt_session_number"`
	Number      int            `json:"number" gorm:"not null;uniqueIndex:idx_attempt_session_number"`
	Answer      datatypes.JSON `json:"answer" gorm:"type:jsonb"`
	Correct     bool           `json:"correct"`
	Score       int            `json:"score"`
	MaxScore    int            `json:"max_score"`
	Percentage  float64        `json:"percentage"`
	Feedback    *string        `json:"feedback" gorm:"type:text"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}
