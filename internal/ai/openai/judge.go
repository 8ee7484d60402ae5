package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/utils"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const (
	systemPrompt = "You are a precise recruiting analyst. Answer only with the requested JSON object."
	maxLogLength = 200
)

var _ ai.Judge = (*Judge)(nil)

// Judge scores bucket comparisons with a chat model.
type Judge struct {
	client llms.Model
	model  string
	logger *zap.Logger
}

// NewJudge connects to the chat model described by cfg.
func NewJudge(cfg Config, log *zap.Logger) (*Judge, error) {
	if err := cfg.validate(cfg.Model); err != nil {
		return nil, err
	}

	opts := []openai.Option{
		openai.WithToken(cfg.token()),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return newJudge(client, cfg.Model, log), nil
}

func newJudge(client llms.Model, model string, log *zap.Logger) *Judge {
	return &Judge{
		client: client,
		model:  model,
		logger: logger.WithCommonFields(log, "openai", model),
	}
}

func (j *Judge) Judge(ctx context.Context, req *ai.JudgeRequest) (*ai.Judgment, error) {
	if req == nil {
		return nil, errors.New("judge request is required")
	}

	prompt := ai.BuildPrompt(req)
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	resp, err := j.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, errors.New("model returned no choices")
	}

	raw := resp.Choices[0].Content
	j.logger.Debug("openai judgment response",
		logger.Bucket(req.Bucket.String()),
		zap.String("response_preview", utils.TruncateForLog(raw, maxLogLength)),
	)

	return ai.ParseJudgment(raw)
}

func (j *Judge) Model() string { return j.model }
