package backend

import "context"

// Message is one chat turn sent to the generation model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single generation call. Zero values fall back to the
// generator's defaults.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Generator is the black-box text generation capability. Implementations are
// expected to be slow and single-capacity; callers serialize access through
// the request queue rather than calling concurrently.
type Generator interface {
	Generate(ctx context.Context, msgs []Message, opts Options) (string, error)
}
