// Package openai implements the judgment and embedding services on top of any
// OpenAI-compatible endpoint (OpenAI, Ollama, vLLM) through langchaingo.
package openai

import (
	"errors"
	"strings"
)

// Config describes an OpenAI-compatible endpoint.
type Config struct {
	BaseURL        string
	Token          string
	Model          string
	EmbeddingModel string
	// EmbeddingBatchSize caps how many texts go into one embeddings request.
	EmbeddingBatchSize int
}

func (c Config) token() string {
	// Local servers accept any token but langchaingo requires one.
	if t := strings.TrimSpace(c.Token); t != "" {
		return t
	}
	return "none"
}

func (c Config) validate(model string) error {
	if strings.TrimSpace(model) == "" {
		return errors.New("openai model is required")
	}
	return nil
}
