// Package embed turns catalog products into embedding vectors: text
// preparation templates plus an Embedder interface with an OpenAI
// implementation. Any embedding backend can be plugged in by
// implementing Embedder.
package embed

import (
	"context"
	"errors"
)

// Embedder defines the interface for text-to-vector embedding.
type Embedder interface {
	// Embed converts a single text string into a vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts into vectors in a single call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dim returns the dimension of vectors produced by this embedder.
	Dim() int
}

// Errors related to embedder operations
var (
	// ErrEmbedderNotConfigured is returned when embedding operations are
	// requested but no embedder was configured.
	ErrEmbedderNotConfigured = errors.New("embed: embedder not configured")

	// ErrEmptyText is returned when an empty text string is provided.
	ErrEmptyText = errors.New("embed: empty text provided")

	// ErrEmbeddingFailed is returned when the backend produces no vector.
	ErrEmbeddingFailed = errors.New("embed: embedding failed")
)

// BaseEmbedder provides a default EmbedBatch built on a single-text
// embed function. Embedders can embed this to get batch support for free.
type BaseEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
	dimFn   func() int
}

// Embed calls the underlying embed function for a single text.
func (b *BaseEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return b.embedFn(ctx, text)
}

// EmbedBatch provides a default batch implementation using goroutines.
func (b *BaseEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	type result struct {
		idx int
		vec []float32
		err error
	}

	ch := make(chan result, len(texts))

	for i, text := range texts {
		go func(idx int, t string) {
			vec, err := b.embedFn(ctx, t)
			ch <- result{idx: idx, vec: vec, err: err}
		}(i, text)
	}

	for range texts {
		r := <-ch
		results[r.idx] = r.vec
		errs[r.idx] = r.err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Dim returns the dimension of vectors.
func (b *BaseEmbedder) Dim() int {
	return b.dimFn()
}
