package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidContent   = errors.New("invalid exercise content")
	ErrMalformedAnswer  = errors.New("malformed answer")
	ErrUnsupportedKind  = errors.New("unsupported exercise kind")
	ErrGenerationFailed = errors.New("content generation failed")
	ErrNoTemplate       = errors.New("no generation template for exercise kind")
)

// StructuralError reports content that does not match its declared kind's
// shape. It unwraps to ErrInvalidContent and to its ValidationErrors.
type StructuralError struct {
	Kind   string           `json:"kind,omitempty"`
	Errors ValidationErrors `json:"errors"`
}

func NewStructuralError(kind string, errs ...ValidationError) *StructuralError {
	return &StructuralError{Kind: kind, Errors: errs}
}

func (e *StructuralError) Error() string {
	subject := "content"
	if e.Kind != "" {
		subject = e.Kind + " content"
	}
	if len(e.Errors) == 0 {
		return fmt.Sprintf("invalid %s", subject)
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid %s: %s %s", subject, e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("invalid %s: %s %s (and %d more)", subject, e.Errors[0].Field, e.Errors[0].Message, len(e.Errors)-1)
}

func (e *StructuralError) Unwrap() []error {
	return []error{ErrInvalidContent, e.Errors}
}

// MalformedAnswerError reports an answer whose shape does not match what the
// content kind expects. This is distinct from a well-formed wrong answer.
type MalformedAnswerError struct {
	Kind     string `json:"kind"`
	Expected string `json:"expected"`
	Reason   string `json:"reason,omitempty"`
	Cause    error  `json:"-"`
}

func NewMalformedAnswerError(kind, expected, reason string, cause error) *MalformedAnswerError {
	return &MalformedAnswerError{
		Kind:     kind,
		Expected: expected,
		Reason:   reason,
		Cause:    cause,
	}
}

func (e *MalformedAnswerError) Error() string {
	msg := fmt.Sprintf("malformed %s answer: expected %s", e.Kind, e.Expected)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MalformedAnswerError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrMalformedAnswer, e.Cause}
	}
	return []error{ErrMalformedAnswer}
}

// UnsupportedKind wraps ErrUnsupportedKind with the offending kind.
func UnsupportedKind(kind string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
}
