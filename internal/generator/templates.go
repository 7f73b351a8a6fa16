package generator

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"text/template"

	apperrors "github.com/SAP-F-2025/exercise-service/internal/errors"
	"github.com/SAP-F-2025/exercise-service/internal/models"
	"github.com/SAP-F-2025/exercise-service/internal/validator"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// templateFile is the YAML layout of templates.yaml.
type templateFile struct {
	Templates []struct {
		Kind    models.ExerciseKind    `yaml:"kind"`
		Prompt  string                 `yaml:"prompt"`
		Example map[string]interface{} `yaml:"example"`
	} `yaml:"templates"`
}

// Template is the generation recipe for one exercise kind.
type Template struct {
	Kind    models.ExerciseKind
	prompt  *template.Template
	example json.RawMessage
}

// Example returns the canned example as JSON.
func (t *Template) Example() json.RawMessage {
	return append(json.RawMessage(nil), t.example...)
}

// PromptData is the data the prompt skeleton is rendered with.
type PromptData struct {
	Kind       models.ExerciseKind
	Topic      string
	Difficulty float64
	Language   string
	GradeLevel string
	Example    string
}

// Render fills the prompt skeleton.
func (t *Template) Render(data PromptData) (string, error) {
	data.Kind = t.Kind
	data.Example = string(t.example)

	var sb strings.Builder
	if err := t.prompt.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Kind, err)
	}
	return sb.String(), nil
}

// TemplateSet is the immutable table of templates keyed by kind.
type TemplateSet struct {
	byKind map[models.ExerciseKind]*Template
}

func (s *TemplateSet) Get(kind models.ExerciseKind) (*Template, error) {
	t, ok := s.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrNoTemplate, kind)
	}
	return t, nil
}

// Kinds returns the kinds that have a template, in declaration order.
func (s *TemplateSet) Kinds() []models.ExerciseKind {
	kinds := make([]models.ExerciseKind, 0, len(s.byKind))
	for kind := range s.byKind {
		kinds = append(kinds, kind)
	}
	order := make(map[models.ExerciseKind]int, len(models.AllKinds))
	for i, kind := range models.AllKinds {
		order[kind] = i
	}
	sort.Slice(kinds, func(i, j int) bool { return order[kinds[i]] < order[kinds[j]] })
	return kinds
}

var (
	defaultTemplatesOnce sync.Once
	defaultTemplates     *TemplateSet
	defaultTemplatesErr  error
)

// DefaultTemplates returns the embedded template table, parsed on first use.
func DefaultTemplates() (*TemplateSet, error) {
	defaultTemplatesOnce.Do(func() {
		defaultTemplates, defaultTemplatesErr = ParseTemplates(templatesYAML)
	})
	return defaultTemplates, defaultTemplatesErr
}

// ParseTemplates parses a YAML template table. Every example must pass
// structural validation for its kind.
func ParseTemplates(data []byte) (*TemplateSet, error) {
	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	set := &TemplateSet{byKind: make(map[models.ExerciseKind]*Template, len(file.Templates))}
	for i, entry := range file.Templates {
		if !entry.Kind.IsGradable() {
			return nil, fmt.Errorf("templates[%d]: kind %q has no grading algorithm", i, entry.Kind)
		}
		if _, dup := set.byKind[entry.Kind]; dup {
			return nil, fmt.Errorf("templates[%d]: duplicate kind %q", i, entry.Kind)
		}

		prompt, err := template.New(string(entry.Kind)).Option("missingkey=error").Parse(entry.Prompt)
		if err != nil {
			return nil, fmt.Errorf("templates[%d]: prompt: %w", i, err)
		}

		example, err := validator.ParseContentValue(entry.Example)
		if err != nil {
			return nil, fmt.Errorf("templates[%d]: example: %w", i, err)
		}
		if example.ExerciseKind() != entry.Kind {
			return nil, fmt.Errorf("templates[%d]: example kind %q does not match %q", i, example.ExerciseKind(), entry.Kind)
		}

		exampleJSON, err := json.Marshal(example)
		if err != nil {
			return nil, fmt.Errorf("templates[%d]: example: %w", i, err)
		}

		set.byKind[entry.Kind] = &Template{
			Kind:    entry.Kind,
			prompt:  prompt,
			example: exampleJSON,
		}
	}
	return set, nil
}
