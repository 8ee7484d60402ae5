package openai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/skills"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	response string
	err      error
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.response}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestJudge(t *testing.T) {
	model := &fakeModel{response: `{"match_percentage": "70", "confidence": 0.8}`}
	judge := newJudge(model, "llama3", zap.NewNop())

	judgment, err := judge.Judge(context.Background(), &ai.JudgeRequest{
		Bucket:          skills.BucketLanguages,
		JobSkills:       []string{"German"},
		CandidateSkills: []string{"German (C1)"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if judgment.MatchPercentage != 70 {
		t.Fatalf("expected 70, got %v", judgment.MatchPercentage)
	}
	if judgment.Confidence == nil || *judgment.Confidence != 80 {
		t.Fatalf("expected confidence 80, got %v", judgment.Confidence)
	}

	if len(model.messages) != 2 || model.messages[0].Role != llms.ChatMessageTypeSystem {
		t.Fatalf("expected system and human messages, got %+v", model.messages)
	}
	prompt, ok := model.messages[1].Parts[0].(llms.TextContent)
	if !ok || !strings.Contains(prompt.Text, "German (C1)") {
		t.Fatalf("unexpected prompt part: %+v", model.messages[1].Parts[0])
	}
	if judge.Model() != "llama3" {
		t.Fatalf("unexpected model: %s", judge.Model())
	}
}

func TestJudgeErrors(t *testing.T) {
	judge := newJudge(&fakeModel{err: errors.New("connection refused")}, "m", nil)
	if _, err := judge.Judge(context.Background(), &ai.JudgeRequest{Bucket: skills.BucketOther}); err == nil {
		t.Fatalf("expected transport error")
	}

	judge = newJudge(&fakeModel{response: "not json"}, "m", nil)
	if _, err := judge.Judge(context.Background(), &ai.JudgeRequest{Bucket: skills.BucketOther}); !errors.Is(err, ai.ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

type fakeEmbedder struct {
	drop bool
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, []float32{float32(len(text))})
	}
	if f.drop && len(out) > 0 {
		out = out[1:]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func TestEmbedder(t *testing.T) {
	e := &Embedder{embedder: &fakeEmbedder{}, model: "nomic-embed-text"}

	vec, err := e.EmbedText(context.Background(), "kubernetes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 1 || vec[0] != 10 {
		t.Fatalf("unexpected vector: %v", vec)
	}

	e = &Embedder{embedder: &fakeEmbedder{drop: true}, model: "m"}
	if _, err := e.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error on vector count mismatch")
	}
}

func TestConstructorsValidateModels(t *testing.T) {
	if _, err := NewJudge(Config{}, nil); err == nil {
		t.Fatalf("expected error without a chat model")
	}
	if _, err := NewEmbedder(Config{Model: "chat"}); err == nil {
		t.Fatalf("expected error without an embedding model")
	}
}
