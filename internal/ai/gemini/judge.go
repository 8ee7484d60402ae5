package gemini

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultMaxLogLength = 200

	systemInstruction = "You are a precise recruiting analyst. Answer only with the requested JSON object."
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, systemInstruction, message string) (string, error)
	Model() string
}

var _ ai.Judge = (*Judge)(nil)

// Judge scores bucket comparisons with a Gemini model.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewJudge(generator contentGenerator, log *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Judge{
		generator: generator,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
	}
}

func (j *Judge) Judge(ctx context.Context, req *ai.JudgeRequest) (*ai.Judgment, error) {
	if req == nil {
		return nil, errors.New("judge request is required")
	}

	prompt := ai.BuildPrompt(req)
	log := logger.WithFields(j.logger, logger.Bucket(req.Bucket.String()))

	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	return ai.ParseJudgment(raw)
}

func (j *Judge) Model() string { return j.generator.Model() }
