package generator

import (
	"context"
	"encoding/json"
)

// CompletionProvider turns a rendered prompt into a JSON payload that is
// expected to match the requested kind's content shape.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (json.RawMessage, error)
}

// CompletionFunc adapts a function to CompletionProvider.
type CompletionFunc func(ctx context.Context, prompt string) (json.RawMessage, error)

func (f CompletionFunc) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	return f(ctx, prompt)
}

// exampleProvider answers every prompt with a template's canned example.
type exampleProvider struct {
	tmpl *Template
}

func (p exampleProvider) Complete(ctx context.Context, _ string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.tmpl.Example(), nil
}
