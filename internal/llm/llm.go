// Package llm talks to embedding servers.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when there is nothing left to embed after preparation.
var ErrEmptyInput = errors.New("empty embedding input")

type EmbeddingResult struct {
	Embedding []float32
	Model     string
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (*EmbeddingResult, error)
	EmbedBatch(ctx context.Context, texts []string) ([]*EmbeddingResult, error)
	ModelName() string
}
