package models

// ValidationResult is the outcome of grading one answer against one content
// instance. Score and MaxScore are in kind-specific units.
type ValidationResult struct {
	Correct       bool        `json:"correct"`
	Score         int         `json:"score"`
	MaxScore      int         `json:"max_score"`
	Feedback      *string     `json:"feedback,omitempty"`
	CorrectAnswer interface{} `json:"correct_answer,omitempty"`
}

// Percentage returns Score/MaxScore on a 0-100 scale.
func (r *ValidationResult) Percentage() float64 {
	if r == nil || r.MaxScore <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.MaxScore) * 100
}
