package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeModels struct {
	batches [][]string
	err     error
	short   bool
}

func (f *fakeModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	batch := make([]string, 0, len(contents))
	resp := &genai.EmbedContentResponse{}
	for i, c := range contents {
		batch = append(batch, c.Parts[0].Text)
		if f.short && i == len(contents)-1 {
			break
		}
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: []float32{float32(len(c.Parts[0].Text)), 1}})
	}
	f.batches = append(f.batches, batch)
	return resp, nil
}

func TestEmbedderBatchesRequests(t *testing.T) {
	models := &fakeModels{}
	e := &Embedder{models: models, model: "embed"}

	texts := make([]string, maxEmbedBatch+5)
	for i := range texts {
		texts[i] = string(make([]byte, i%7))
	}

	vectors, err := e.EmbedTexts(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	if len(models.batches) != 2 || len(models.batches[0]) != maxEmbedBatch || len(models.batches[1]) != 5 {
		t.Fatalf("unexpected batching: %d batches", len(models.batches))
	}
	if vectors[3][0] != 3 {
		t.Fatalf("vectors are out of order: %v", vectors[3])
	}

	single, err := e.EmbedText(context.Background(), "go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(single) != 2 || single[0] != 2 {
		t.Fatalf("unexpected vector: %v", single)
	}
}

func TestEmbedderErrors(t *testing.T) {
	e := &Embedder{models: &fakeModels{err: errors.New("quota")}, model: "embed"}
	if _, err := e.EmbedText(context.Background(), "go"); err == nil {
		t.Fatalf("expected transport error")
	}

	e = &Embedder{models: &fakeModels{short: true}, model: "embed"}
	if _, err := e.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for missing embeddings")
	}
}
