package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

// RandomSource picks message indexes from the feedback pools.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
}

// RandomFunc adapts a plain function to RandomSource.
type RandomFunc func(n int) int

func (f RandomFunc) IntN(n int) int { return f(n) }

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// Engine grades learner answers against exercise content. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	random      RandomSource
	positive    []string
	encouraging []string
	hints       map[models.ExerciseKind]string
}

type Option func(*Engine)

// WithRandom sets the random source used for feedback selection.
func WithRandom(source RandomSource) Option {
	return func(e *Engine) {
		if source != nil {
			e.random = source
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		random:      globalRandom{},
		positive:    positiveMessages,
		encouraging: encouragingMessages,
		hints:       kindHints,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ValidateAnswer grades answer against content. A well-formed wrong answer
// yields a result with Correct=false; an answer of the wrong shape returns a
// *MalformedAnswerError and kinds without an algorithm return
// ErrUnsupportedKind.
func (e *Engine) ValidateAnswer(content models.Content, answer interface{}) (*models.ValidationResult, error) {
	if content == nil {
		return nil, apperrors.UnsupportedKind("<nil>")
	}

	switch c := content.(type) {
	case *models.MultipleChoiceContent:
		return validateMultipleChoice(c, answer)
	case *models.TrueFalseContent:
		return validateTrueFalse(c, answer)
	case *models.DragDropContent:
		return validateDragDrop(c, answer)
	case *models.HotspotContent:
		return validateHotspot(c, answer)
	case *models.GapFillContent:
		return validateGapFill(c, answer)
	case *models.MatchContent:
		return validateMatch(c, answer)
	case *models.GenericContent:
		return nil, apperrors.UnsupportedKind(c.ExerciseKind().String())
	default:
		return nil, apperrors.UnsupportedKind(content.ExerciseKind().String())
	}
}

// CalculateScore grades answer and returns the score as a percentage.
func (e *Engine) CalculateScore(content models.Content, answer interface{}) (float64, error) {
	result, err := e.ValidateAnswer(content, answer)
	if err != nil {
		return 0, err
	}
	return result.Percentage(), nil
}

// decodeAnswer normalizes answer into target through a strict JSON round
// trip, so typed values, decoded JSON and raw bytes are all accepted.
func decodeAnswer(kind models.ExerciseKind, expected string, answer interface{}, target interface{}) error {
	if answer == nil {
		return apperrors.NewMalformedAnswerError(kind.String(), expected, "answer is missing", nil)
	}

	var raw []byte
	switch a := answer.(type) {
	case json.RawMessage:
		raw = a
	case []byte:
		raw = a
	default:
		encoded, err := json.Marshal(answer)
		if err != nil {
			return apperrors.NewMalformedAnswerError(kind.String(), expected, "answer cannot be encoded", err)
		}
		raw = encoded
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return apperrors.NewMalformedAnswerError(kind.String(), expected, "answer is missing", nil)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return apperrors.NewMalformedAnswerError(kind.String(), expected, "got "+typeErr.Value, err)
		}
		return apperrors.NewMalformedAnswerError(kind.String(), expected, "", err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return apperrors.NewMalformedAnswerError(kind.String(), expected, "trailing data after answer", nil)
	}
	return nil
}
