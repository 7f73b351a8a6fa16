package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, opts ...Option) *Generator {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	return g
}

func TestDefaultTemplates(t *testing.T) {
	set, err := DefaultTemplates()
	require.NoError(t, err)

	assert.Equal(t, []models.ExerciseKind{
		models.MultipleChoice,
		models.TrueFalse,
		models.DragDrop,
		models.Hotspot,
		models.GapFill,
		models.Match,
	}, set.Kinds())

	for _, kind := range set.Kinds() {
		tmpl, err := set.Get(kind)
		require.NoError(t, err)
		content, err := validator.ParseContent(tmpl.Example())
		require.NoError(t, err, kind)
		assert.Equal(t, kind, content.ExerciseKind())
	}

	_, err = set.Get(models.Crossword)
	assert.True(t, errors.Is(err, apperrors.ErrNoTemplate))
}

func TestParseTemplates_Rejects(t *testing.T) {
	tests := map[string]string{
		"ungraded kind": `
templates:
  - kind: crossword
    prompt: "x"
    example: {kind: crossword}`,
		"duplicate kind": `
templates:
  - kind: true_false
    prompt: "x"
    example: {kind: true_false, statement: s, correct: true}
  - kind: true_false
    prompt: "y"
    example: {kind: true_false, statement: s, correct: false}`,
		"invalid example": `
templates:
  - kind: gap_fill
    prompt: "x"
    example: {kind: gap_fill, text: "[blank] and [blank]", answers: [[a]]}`,
		"bad prompt": `
templates:
  - kind: true_false
    prompt: "{{ .Topic "
    example: {kind: true_false, statement: s, correct: true}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTemplates([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRenderPrompt(t *testing.T) {
	g := newTestGenerator(t)

	prompt, err := g.RenderPrompt(Options{Kind: models.GapFill, Topic: "Photosynthesis", Difficulty: 3, GradeLevel: "5"})
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Photosynthesis"`)
	assert.Contains(t, prompt, "Difficulty: 3.0")
	assert.Contains(t, prompt, "Language: en.")
	assert.Contains(t, prompt, "grade 5")
	assert.Contains(t, prompt, `"kind":"gap_fill"`)

	_, err = g.RenderPrompt(Options{Kind: models.Crossword, Topic: "x"})
	var errs apperrors.ValidationErrors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "kind", errs[0].Field)
}

func TestGenerateOne_StubPerKind(t *testing.T) {
	g := newTestGenerator(t)
	ctx := context.Background()

	for _, kind := range g.Kinds() {
		content, err := g.GenerateOne(ctx, Options{Kind: kind, Topic: "Geography", Difficulty: 4, Language: "fr", GradeLevel: "6"})
		require.NoError(t, err, kind)
		require.NotNil(t, content)

		base := content.Base()
		assert.Equal(t, kind, content.ExerciseKind())
		assert.NotEmpty(t, base.ID)
		assert.Equal(t, "Geography", base.Topic)
		assert.Equal(t, "fr", base.Language)
		assert.Equal(t, "6", base.GradeLevel)
		assert.Equal(t, 4.0, base.Difficulty)
		assert.True(t, g.Validate(content))
	}
}

func TestGenerateOne_FreshInstances(t *testing.T) {
	g := newTestGenerator(t)
	ctx := context.Background()

	first, err := g.GenerateOne(ctx, Options{Kind: models.Match, Topic: "a"})
	require.NoError(t, err)
	first.(*models.MatchContent).Pairs[0].Right = "changed"

	second, err := g.GenerateOne(ctx, Options{Kind: models.Match, Topic: "a"})
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second.(*models.MatchContent).Pairs[0].Right)
	assert.NotEqual(t, first.Base().ID, second.Base().ID)
}

func TestGenerateOne_UsesProvider(t *testing.T) {
	var prompts []string
	provider := CompletionFunc(func(ctx context.Context, prompt string) (json.RawMessage, error) {
		prompts = append(prompts, prompt)
		return json.RawMessage(`{"kind":"true_false","title":"Moon","statement":"The Moon is a planet.","correct":false}`), nil
	})
	g := newTestGenerator(t, WithProvider(provider))

	content, err := g.GenerateOne(context.Background(), Options{Kind: models.TrueFalse, Topic: "Space", Difficulty: 2})
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `"Space"`)

	tf := content.(*models.TrueFalseContent)
	assert.Equal(t, "The Moon is a planet.", tf.Statement)
	assert.False(t, tf.Truth())
}

func TestGenerateOne_Failures(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"provider error", "", errors.New("connection reset")},
		{"structurally invalid", `{"kind":"match","pairs":[{"left":"a","right":"x"},{"left":"b","right":"x"}]}`, nil},
		{"unknown field", `{"kind":"match","pairs":[{"left":"a","right":"b"}],"score":3}`, nil},
		{"wrong kind", `{"kind":"true_false","statement":"s","correct":true}`, nil},
		{"missing kind", `{"pairs":[{"left":"a","right":"b"}]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := CompletionFunc(func(ctx context.Context, prompt string) (json.RawMessage, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return json.RawMessage(tt.response), nil
			})
			g := newTestGenerator(t, WithProvider(provider))

			content, err := g.GenerateOne(context.Background(), Options{Kind: models.Match, Topic: "t"})
			assert.Nil(t, content)
			assert.True(t, errors.Is(err, apperrors.ErrGenerationFailed), "got %v", err)
		})
	}
}

func TestGenerateOne_CancelledContext(t *testing.T) {
	g := newTestGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	content, err := g.GenerateOne(ctx, Options{Kind: models.Hotspot, Topic: "t"})
	assert.Nil(t, content)
	assert.True(t, errors.Is(err, apperrors.ErrGenerationFailed))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGenerateBatch(t *testing.T) {
	g := newTestGenerator(t)

	for _, kind := range g.Kinds() {
		batch := g.GenerateBatch(context.Background(), Options{Kind: kind, Topic: "Science", Difficulty: 2})
		require.Len(t, batch, DefaultBatchSize, kind)
		for i, content := range batch {
			assert.True(t, g.Validate(content))
			assert.InDelta(t, 2+0.1*float64(i), content.Base().Difficulty, 1e-9)
		}
	}
}

func TestGenerateBatch_OmitsFailures(t *testing.T) {
	set, err := DefaultTemplates()
	require.NoError(t, err)
	tmpl, err := set.Get(models.MultipleChoice)
	require.NoError(t, err)

	var calls atomic.Int32
	provider := CompletionFunc(func(ctx context.Context, prompt string) (json.RawMessage, error) {
		if calls.Add(1)%2 == 0 {
			return json.RawMessage(`{"kind":"multiple_choice","question":"q","choices":[]}`), nil
		}
		return tmpl.Example(), nil
	})
	g := newTestGenerator(t, WithProvider(provider))

	batch := g.GenerateBatch(context.Background(), Options{Kind: models.MultipleChoice, Topic: "t", Count: 5})
	assert.Equal(t, int32(5), calls.Load())
	require.Len(t, batch, 3)
	assert.Equal(t, 0.0, batch[0].Base().Difficulty)
	assert.InDelta(t, 0.2, batch[1].Base().Difficulty, 1e-9)
	assert.InDelta(t, 0.4, batch[2].Base().Difficulty, 1e-9)
}

func TestGenerateBatch_CountAndClamp(t *testing.T) {
	g := newTestGenerator(t, WithBatchSize(2))

	batch := g.GenerateBatch(context.Background(), Options{Kind: models.TrueFalse, Topic: "t", Difficulty: 9.95})
	require.Len(t, batch, 2)
	assert.Equal(t, 9.95, batch[0].Base().Difficulty)
	assert.Equal(t, 10.0, batch[1].Base().Difficulty)

	batch = g.GenerateBatch(context.Background(), Options{Kind: models.TrueFalse, Topic: "t", Count: 3})
	assert.Len(t, batch, 3)

	assert.Empty(t, g.GenerateBatch(context.Background(), Options{Kind: models.Timeline, Topic: "t"}))
}

func TestGenerator_ValidateRejectsBrokenContent(t *testing.T) {
	g := newTestGenerator(t)
	broken := &models.GapFillContent{
		ContentBase: models.ContentBase{Kind: models.GapFill},
		Text:        strings.Repeat("[blank] ", 3),
		Answers:     [][]string{{"a"}},
	}
	assert.False(t, g.Validate(broken))
}
