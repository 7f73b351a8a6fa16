package models

type ExerciseKind string

const (
	MultipleChoice    ExerciseKind = "multiple_choice"
	TrueFalse         ExerciseKind = "true_false"
	ShortAnswer       ExerciseKind = "short_answer"
	DragDrop          ExerciseKind = "drag_drop"
	Hotspot           ExerciseKind = "hotspot"
	ImageSequence     ExerciseKind = "image_sequence"
	GapFill           ExerciseKind = "gap_fill"
	Crossword         ExerciseKind = "crossword"
	WordSearch        ExerciseKind = "word_search"
	MemoryCards       ExerciseKind = "memory_cards"
	Flashcards        ExerciseKind = "flashcards"
	BranchingScenario ExerciseKind = "branching_scenario"
	Timeline          ExerciseKind = "timeline"
	MindMap           ExerciseKind = "mind_map"
	LiveQuiz          ExerciseKind = "live_quiz"
	TeamChallenge     ExerciseKind = "team_challenge"
	Rally             ExerciseKind = "rally"
	MathSolver        ExerciseKind = "math_solver"
	CodeChallenge     ExerciseKind = "code_challenge"
	Match             ExerciseKind = "match"
)

// AllKinds lists every declared exercise kind in declaration order.
var AllKinds = []ExerciseKind{
	MultipleChoice,
	TrueFalse,
	ShortAnswer,
	DragDrop,
	Hotspot,
	ImageSequence,
	GapFill,
	Crossword,
	WordSearch,
	MemoryCards,
	Flashcards,
	BranchingScenario,
	Timeline,
	MindMap,
	LiveQuiz,
	TeamChallenge,
	Rally,
	MathSolver,
	CodeChallenge,
	Match,
}

var gradableKinds = map[ExerciseKind]bool{
	MultipleChoice: true,
	TrueFalse:      true,
	DragDrop:       true,
	Hotspot:        true,
	GapFill:        true,
	Match:          true,
}

// IsValid reports whether k belongs to the closed set of declared kinds.
func (k ExerciseKind) IsValid() bool {
	for _, kind := range AllKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// IsGradable reports whether the scoring engine has an algorithm for k.
func (k ExerciseKind) IsGradable() bool {
	return gradableKinds[k]
}

func (k ExerciseKind) String() string {
	return string(k)
}
