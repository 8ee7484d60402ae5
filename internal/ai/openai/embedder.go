package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ ai.Embedder = (*Embedder)(nil)

// Embedder produces embeddings through an OpenAI-compatible embeddings endpoint.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
}

// NewEmbedder connects to the embedding model described by cfg.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if err := cfg.validate(cfg.EmbeddingModel); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithToken(cfg.token()),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	embedOpts := []embeddings.Option{embeddings.WithStripNewLines(true)}
	if cfg.EmbeddingBatchSize > 0 {
		embedOpts = append(embedOpts, embeddings.WithBatchSize(cfg.EmbeddingBatchSize))
	}

	embedder, err := embeddings.NewEmbedder(client, embedOpts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	return &Embedder{embedder: embedder, model: cfg.EmbeddingModel}, nil
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, errors.New("embedding endpoint returned an unexpected number of vectors")
	}
	return vectors, nil
}

func (e *Embedder) Model() string { return e.model }
