package scoring

import (
	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

var positiveMessages = []string{
	"Excellent work!",
	"Great job, that's correct!",
	"Well done!",
	"Perfect, you nailed it!",
	"Correct! Keep it up!",
}

var encouragingMessages = []string{
	"Not quite, but you're getting there.",
	"Good try! Have another look.",
	"Almost! Give it another go.",
	"Keep going, practice makes perfect.",
	"Don't give up, you can do this.",
}

// PositiveMessages returns a copy of the pool used for correct answers.
func PositiveMessages() []string {
	return append([]string(nil), positiveMessages...)
}

// EncouragingMessages returns a copy of the pool used for wrong answers.
func EncouragingMessages() []string {
	return append([]string(nil), encouragingMessages...)
}

// GenerateFeedback picks a message for the learner. On a wrong answer the
// encouraging message is followed by the kind-specific feedback of the
// graded result.
func (e *Engine) GenerateFeedback(content models.Content, answer interface{}, correct bool) (string, error) {
	if content == nil {
		return "", apperrors.UnsupportedKind("<nil>")
	}
	if !content.ExerciseKind().IsGradable() {
		return "", apperrors.UnsupportedKind(content.ExerciseKind().String())
	}

	if correct {
		return e.pick(e.positive), nil
	}

	result, err := e.ValidateAnswer(content, answer)
	if err != nil {
		return "", err
	}

	msg := e.pick(e.encouraging)
	if result.Feedback != nil && *result.Feedback != "" {
		msg += " " + *result.Feedback
	}
	return msg, nil
}

func (e *Engine) pick(pool []string) string {
	return pool[e.random.IntN(len(pool))]
}
