package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/skillmatch/internal/ai"
	"google.golang.org/genai"
)

// Gemini rejects embedding batches larger than this.
const maxEmbedBatch = 100

var _ ai.Embedder = (*Embedder)(nil)

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder produces embeddings with the Gemini embedding models.
type Embedder struct {
	models contentEmbedder
	model  string
}

// NewEmbedder returns an embedder on top of client.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	return &Embedder{models: client.Models, model: model}
}

func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		resp, err := e.models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, fmt.Errorf("embed content: %w", err)
		}
		if resp == nil || len(resp.Embeddings) != len(contents) {
			return nil, errors.New("gemini api returned an unexpected number of embeddings")
		}

		for _, emb := range resp.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, errors.New("gemini api returned an empty embedding")
			}
			out = append(out, emb.Values)
		}
	}

	return out, nil
}

func (e *Embedder) Model() string { return e.model }
