package embed

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder produces embeddings via the OpenAI embeddings API.
// Works against any OpenAI-compatible endpoint when BaseURL is set.
type OpenAIEmbedder struct {
	BaseEmbedder
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

// OpenAIOptions configures the OpenAI embedder.
type OpenAIOptions struct {
	APIKey  string
	BaseURL string // optional, for compatible endpoints
	Model   string // defaults to text-embedding-3-small
	Dim     int    // defaults to 1536
}

// NewOpenAIEmbedder creates an embedder backed by the OpenAI API.
func NewOpenAIEmbedder(opts OpenAIOptions) (*OpenAIEmbedder, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("embed: API key is required")
	}

	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}

	model := openai.SmallEmbedding3
	if opts.Model != "" {
		model = openai.EmbeddingModel(opts.Model)
	}
	dim := opts.Dim
	if dim == 0 {
		dim = 1536
	}

	e := &OpenAIEmbedder{
		client: openai.NewClientWithConfig(config),
		model:  model,
		dim:    dim,
	}
	e.BaseEmbedder = BaseEmbedder{
		embedFn: e.embed,
		dimFn:   func() int { return e.dim },
	}
	return e, nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	}
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmbeddingFailed
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch sends all texts in one API call instead of fanning out.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, ErrEmptyText
		}
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	}
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
