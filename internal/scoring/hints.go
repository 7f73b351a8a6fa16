package scoring

import (
	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
)

const genericHint = "Read the instructions again carefully and take it one step at a time."

var kindHints = map[models.ExerciseKind]string{
	models.MultipleChoice: "Rule out the options you know are wrong first.",
	models.TrueFalse:      "Look for a single word in the statement that could make it false.",
	models.DragDrop:       "Read each zone label and ask which items clearly belong there.",
	models.Hotspot:        "Look closely at the image; the answer is in a specific area.",
	models.GapFill:        "Read the whole sentence first; the words around each blank are clues.",
	models.Match:          "Start with the pairs you are sure about, then match the rest.",
	models.ShortAnswer:    "Keep your answer short and use the key term from the lesson.",
	models.ImageSequence:  "Find the first and last images, then fill in the middle.",
	models.Timeline:       "Anchor the events whose dates you know, then place the others around them.",
	models.MathSolver:     "Write down what you know and what you need to find before calculating.",
}

// GetHint returns nil on a first attempt and a fixed hint for the content's
// kind from the second attempt on.
func (e *Engine) GetHint(content models.Content, attemptNumber int) (*string, error) {
	if content == nil {
		return nil, apperrors.UnsupportedKind("<nil>")
	}
	kind := content.ExerciseKind()
	if !kind.IsValid() {
		return nil, apperrors.UnsupportedKind(kind.String())
	}
	if attemptNumber <= 1 {
		return nil, nil
	}

	hint, ok := e.hints[kind]
	if !ok {
		hint = genericHint
	}
	return &hint, nil
}
