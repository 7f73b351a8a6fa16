package models

import (
	"encoding/json"
	"regexp"
)

// Content is a single exercise definition. The set of implementations is
// closed: every variant lives in this file and type switches over Content
// are expected to be exhaustive.
//
//sumtype:decl
type Content interface {
	ExerciseKind() ExerciseKind
	Base() *ContentBase
	isContent()
}

// ContentBase holds the fields shared by every exercise kind.
type ContentBase struct {
	ID           string       `json:"id,omitempty"`
	Kind         ExerciseKind `json:"kind" validate:"required,exercise_kind"`
	Title        string       `json:"title,omitempty" validate:"max=200"`
	Instructions string       `json:"instructions,omitempty" validate:"max=2000"`
	Topic        string       `json:"topic,omitempty" validate:"max=200"`
	Language     string       `json:"language,omitempty" validate:"omitempty,language_code"`
	GradeLevel   string       `json:"grade_level,omitempty" validate:"max=50"`
	Difficulty   float64      `json:"difficulty,omitempty" validate:"min=0,max=10"`
	Explanation  string       `json:"explanation,omitempty"`
}

func (b *ContentBase) Base() *ContentBase {
	return b
}

// ===== MULTIPLE CHOICE =====

type Choice struct {
	ID      string `json:"id" validate:"required"`
	Text    string `json:"text" validate:"required"`
	Correct bool   `json:"correct"`
}

type MultipleChoiceContent struct {
	ContentBase
	Question        string   `json:"question" validate:"required"`
	Choices         []Choice `json:"choices" validate:"required,min=1,dive"`
	MultipleAnswers bool     `json:"multiple_answers"`
}

func (c *MultipleChoiceContent) ExerciseKind() ExerciseKind { return MultipleChoice }
func (*MultipleChoiceContent) isContent()                   {}

// CorrectIDs returns the ids of the correct choices in declaration order.
func (c *MultipleChoiceContent) CorrectIDs() []string {
	ids := make([]string, 0, len(c.Choices))
	for _, choice := range c.Choices {
		if choice.Correct {
			ids = append(ids, choice.ID)
		}
	}
	return ids
}

// ===== TRUE / FALSE =====

type TrueFalseContent struct {
	ContentBase
	Statement string `json:"statement" validate:"required"`
	Correct   *bool  `json:"correct" validate:"required"`
}

func (c *TrueFalseContent) ExerciseKind() ExerciseKind { return TrueFalse }
func (*TrueFalseContent) isContent()                   {}

// Truth returns the ground truth of the statement.
func (c *TrueFalseContent) Truth() bool {
	return c.Correct != nil && *c.Correct
}

// ===== DRAG AND DROP =====

type DragItem struct {
	ID         string `json:"id" validate:"required"`
	Text       string `json:"text" validate:"required"`
	TargetZone string `json:"target_zone" validate:"required"`
}

type DropZone struct {
	ID       string `json:"id" validate:"required"`
	Label    string `json:"label" validate:"required"`
	Capacity *int   `json:"capacity,omitempty" validate:"omitempty,min=1"`
}

type DragDropContent struct {
	ContentBase
	Items []DragItem `json:"items" validate:"required,min=1,dive"`
	Zones []DropZone `json:"zones" validate:"required,min=1,dive"`
}

func (c *DragDropContent) ExerciseKind() ExerciseKind { return DragDrop }
func (*DragDropContent) isContent()                   {}

// ===== HOTSPOT =====

// HotspotTarget is a circular area on the image. Coordinates and radius are
// percentages of the image size.
type HotspotTarget struct {
	ID      string  `json:"id,omitempty"`
	Label   string  `json:"label,omitempty"`
	X       float64 `json:"x" validate:"min=0,max=100"`
	Y       float64 `json:"y" validate:"min=0,max=100"`
	Radius  float64 `json:"radius" validate:"min=0,max=100"`
	Correct bool    `json:"correct"`
}

type HotspotContent struct {
	ContentBase
	ImageURL string          `json:"image_url" validate:"required"`
	Targets  []HotspotTarget `json:"targets" validate:"required,min=1,dive"`
}

func (c *HotspotContent) ExerciseKind() ExerciseKind { return Hotspot }
func (*HotspotContent) isContent()                   {}

// CorrectTargets returns the targets a learner is expected to click.
func (c *HotspotContent) CorrectTargets() []HotspotTarget {
	targets := make([]HotspotTarget, 0, len(c.Targets))
	for _, t := range c.Targets {
		if t.Correct {
			targets = append(targets, t)
		}
	}
	return targets
}

// ===== GAP FILL =====

// BlankPattern matches a blank marker inside gap-fill text: "[blank]",
// "{{blank}}" or a run of three or more underscores.
var BlankPattern = regexp.MustCompile(`\[blank\]|\{\{\s*blank\s*\}\}|_{3,}`)

type GapFillContent struct {
	ContentBase
	Text          string     `json:"text" validate:"required"`
	Answers       [][]string `json:"answers" validate:"required,min=1,dive,required,min=1,dive,required"`
	CaseSensitive bool       `json:"case_sensitive"`
}

func (c *GapFillContent) ExerciseKind() ExerciseKind { return GapFill }
func (*GapFillContent) isContent()                   {}

// BlankCount returns the number of blank markers in the text.
func (c *GapFillContent) BlankCount() int {
	return len(BlankPattern.FindAllStringIndex(c.Text, -1))
}

// ===== MATCH =====

type MatchPair struct {
	Left  string `json:"left" validate:"required"`
	Right string `json:"right" validate:"required"`
}

type MatchContent struct {
	ContentBase
	Pairs []MatchPair `json:"pairs" validate:"required,min=1,dive"`
}

func (c *MatchContent) ExerciseKind() ExerciseKind { return Match }
func (*MatchContent) isContent()                   {}

// ===== DECLARED, NOT GRADED =====

// GenericContent carries kinds that are declared but have no grading
// algorithm yet. Data holds the original payload untouched.
type GenericContent struct {
	ContentBase
	Data json.RawMessage `json:"data,omitempty"`
}

func (c *GenericContent) ExerciseKind() ExerciseKind { return c.Kind }
func (*GenericContent) isContent()                   {}

// NewContent returns an empty instance of the variant that carries kind.
func NewContent(kind ExerciseKind) Content {
	var c Content
	switch kind {
	case MultipleChoice:
		c = &MultipleChoiceContent{}
	case TrueFalse:
		c = &TrueFalseContent{}
	case DragDrop:
		c = &DragDropContent{}
	case Hotspot:
		c = &HotspotContent{}
	case GapFill:
		c = &GapFillContent{}
	case Match:
		c = &MatchContent{}
	default:
		c = &GenericContent{}
	}
	c.Base().Kind = kind
	return c
}
