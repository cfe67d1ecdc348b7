package llm

import "context"

// Provider turns a fully assembled prompt into text. It carries no state
// between calls.
type Provider interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
	Name() string
}
