package generator

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
	"github.com/google/uuid"
)

const (
	DefaultBatchSize = 5
	MaxBatchSize     = 50
	DefaultLanguage  = "en"

	batchDifficultyStep = 0.1
	maxDifficulty       = 10.0
)

// Options describes the content to generate.
type Options struct {
	Kind       models.ExerciseKind `json:"kind" validate:"required,gradable_kind"`
	Topic      string              `json:"topic" validate:"required,max=200"`
	Difficulty float64             `json:"difficulty" validate:"min=0,max=10"`
	Language   string              `json:"language,omitempty" validate:"omitempty,language_code"`
	GradeLevel string              `json:"grade_level,omitempty" validate:"max=50"`
	Count      int                 `json:"count,omitempty" validate:"min=0,max=50"`
}

// Generator produces exercise content from per-kind templates and a
// completion provider. Without a provider it returns the templates' canned
// examples.
type Generator struct {
	templates *TemplateSet
	provider  CompletionProvider
	validator *validator.Validator
	logger    *slog.Logger
	batchSize int
	newID     func() string
}

type Option func(*Generator)

func WithProvider(provider CompletionProvider) Option {
	return func(g *Generator) { g.provider = provider }
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithBatchSize sets the number of items GenerateBatch produces when
// Options.Count is zero.
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.batchSize = min(n, MaxBatchSize)
		}
	}
}

func WithTemplates(set *TemplateSet) Option {
	return func(g *Generator) {
		if set != nil {
			g.templates = set
		}
	}
}

func WithValidator(v *validator.Validator) Option {
	return func(g *Generator) {
		if v != nil {
			g.validator = v
		}
	}
}

// New creates a generator backed by the embedded template table.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		logger:    slog.Default(),
		batchSize: DefaultBatchSize,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.templates == nil {
		set, err := DefaultTemplates()
		if err != nil {
			return nil, err
		}
		g.templates = set
	}
	if g.validator == nil {
		g.validator = validator.New()
	}
	return g, nil
}

// Kinds lists the kinds the generator has templates for.
func (g *Generator) Kinds() []models.ExerciseKind {
	return g.templates.Kinds()
}

// BatchSize is the number of items GenerateBatch produces when Options.Count
// is zero.
func (g *Generator) BatchSize() int {
	return g.batchSize
}

// RenderPrompt returns the prompt GenerateOne would send for opts.
func (g *Generator) RenderPrompt(opts Options) (string, error) {
	opts = withDefaults(opts)
	if err := g.validator.Validate(&opts); err != nil {
		return "", err
	}

	tmpl, err := g.templates.Get(opts.Kind)
	if err != nil {
		return "", err
	}
	return tmpl.Render(PromptData{
		Topic:      opts.Topic,
		Difficulty: opts.Difficulty,
		Language:   opts.Language,
		GradeLevel: opts.GradeLevel,
	})
}

// GenerateOne produces a single validated content instance. Invalid options
// return validation errors; any provider or structural failure returns an
// error wrapping ErrGenerationFailed and no content.
func (g *Generator) GenerateOne(ctx context.Context, opts Options) (models.Content, error) {
	opts = withDefaults(opts)

	prompt, err := g.RenderPrompt(opts)
	if err != nil {
		return nil, err
	}

	provider := g.provider
	if provider == nil {
		tmpl, err := g.templates.Get(opts.Kind)
		if err != nil {
			return nil, err
		}
		provider = exampleProvider{tmpl: tmpl}
	}

	raw, err := provider.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrGenerationFailed, opts.Kind, err)
	}

	content, err := g.validator.Content().ParseContent(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrGenerationFailed, opts.Kind, err)
	}
	if content.ExerciseKind() != opts.Kind {
		return nil, fmt.Errorf("%w: asked for %s, got %s", apperrors.ErrGenerationFailed, opts.Kind, content.ExerciseKind())
	}

	base := content.Base()
	base.ID = g.newID()
	base.Topic = opts.Topic
	base.Language = opts.Language
	base.GradeLevel = opts.GradeLevel
	base.Difficulty = opts.Difficulty

	if err := g.validator.Content().Validate(content); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrGenerationFailed, opts.Kind, err)
	}
	return content, nil
}

// GenerateBatch produces up to opts.Count items (the configured batch size
// when zero). Item i is generated at opts.Difficulty + 0.1*i. Items that fail
// are logged and left out.
func (g *Generator) GenerateBatch(ctx context.Context, opts Options) []models.Content {
	count := opts.Count
	if count <= 0 {
		count = g.batchSize
	}
	count = min(count, MaxBatchSize)

	contents := make([]models.Content, 0, count)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			g.logger.Warn("batch generation cancelled",
				"kind", opts.Kind,
				"generated", len(contents),
				"requested", count)
			break
		}

		itemOpts := opts
		itemOpts.Count = 0
		itemOpts.Difficulty = rampDifficulty(opts.Difficulty, i)

		content, err := g.GenerateOne(ctx, itemOpts)
		if err != nil {
			g.logger.Warn("batch item generation failed",
				"kind", opts.Kind,
				"index", i,
				"difficulty", itemOpts.Difficulty,
				"error", err)
			continue
		}
		contents = append(contents, content)
	}

	g.logger.Info("batch generated",
		"kind", opts.Kind,
		"topic", opts.Topic,
		"requested", count,
		"generated", len(contents))
	return contents
}

// Validate reports whether content satisfies its kind's structural contract.
func (g *Generator) Validate(content models.Content) bool {
	return g.validator.Content().Validate(content) == nil
}

func withDefaults(opts Options) Options {
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return opts
}

func rampDifficulty(start float64, index int) float64 {
	d := start + batchDifficultyStep*float64(index)
	d = math.Round(d*1e9) / 1e9
	return math.Min(d, maxDifficulty)
}
