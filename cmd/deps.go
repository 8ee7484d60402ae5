package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/ai/gemini"
	"github.com/spigell/skillmatch/internal/ai/openai"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/embedding"
	"github.com/spigell/skillmatch/internal/secrets"
	"github.com/spigell/skillmatch/internal/store"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	embeddingsNamespace  = "embeddings"
	comparisonsNamespace = "comparisons"
)

// stores holds the persisters behind both caches.
type stores struct {
	embeddings  store.Persister[[]float32]
	comparisons store.Persister[cache.Entry]
	db          *badger.DB
}

func openStores(cfg CacheConfig, logger *zap.Logger) (*stores, error) {
	switch cfg.Backend {
	case "memory":
		return &stores{
			embeddings:  store.NewMemory[[]float32](),
			comparisons: store.NewMemory[cache.Entry](),
		}, nil
	case "badger":
		db, err := store.OpenBadgerDB(filepath.Join(cfg.Dir, "badger"), logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			embeddings:  store.NewBadger[[]float32](db, embeddingsNamespace),
			comparisons: store.NewBadger[cache.Entry](db, comparisonsNamespace),
			db:          db,
		}, nil
	default:
		return &stores{
			embeddings:  store.NewJSONFile[[]float32](filepath.Join(cfg.Dir, embeddingsNamespace+".json")),
			comparisons: store.NewJSONFile[cache.Entry](filepath.Join(cfg.Dir, comparisonsNamespace+".json")),
		}, nil
	}
}

// Close releases the shared badger database. The persisters themselves are
// closed by the caches that own them.
func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// providers lazily shares one Gemini client between the judge and the embedder.
type providers struct {
	cfg    AIConfig
	logger *zap.Logger
	client *genai.Client
}

func (p *providers) geminiClient(ctx context.Context) (*genai.Client, error) {
	if p.client != nil {
		return p.client, nil
	}
	if p.cfg.Gemini == nil {
		return nil, errors.New("ai.gemini section is required for the gemini provider")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: p.cfg.Gemini.APIKey,
		File:  p.cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	p.client = client
	return client, nil
}

func (p *providers) openAIConfig() (openai.Config, error) {
	if p.cfg.OpenAI == nil {
		return openai.Config{}, errors.New("ai.openai section is required for the openai provider")
	}
	c := p.cfg.OpenAI

	token, err := secrets.Load(secrets.Source{
		Name:  "openai token",
		Value: c.Token,
		File:  c.TokenFile,
		Env:   "OPENAI_API_KEY",
	})
	if err != nil {
		if strings.TrimSpace(c.TokenFile) != "" {
			return openai.Config{}, err
		}
		// Local OpenAI-compatible servers run without a token.
		token = ""
	}

	return openai.Config{
		BaseURL:            c.BaseURL,
		Token:              token,
		Model:              c.Model,
		EmbeddingModel:     c.EmbeddingModel,
		EmbeddingBatchSize: c.EmbeddingBatchSize,
	}, nil
}

// judge returns nil when no judgment service is configured.
func (p *providers) judge(ctx context.Context) (ai.Judge, error) {
	var (
		judge ai.Judge
		err   error
	)

	switch p.cfg.Provider {
	case "none":
		return nil, nil
	case "openai":
		var c openai.Config
		if c, err = p.openAIConfig(); err != nil {
			return nil, err
		}
		judge, err = openai.NewJudge(c, p.logger)
	default:
		var client *genai.Client
		if client, err = p.geminiClient(ctx); err != nil {
			return nil, err
		}
		generator := gemini.NewGenerator(client, p.cfg.Gemini.Model, p.cfg.Gemini.MaxRetries,
			p.logger.With(zap.Int("ai_retry_attempts", p.cfg.Gemini.MaxRetries)))
		judge = gemini.NewJudge(generator, p.logger, p.cfg.MaxLogLength)
	}
	if err != nil {
		return nil, err
	}

	return ai.RateLimited(judge, p.cfg.RateLimit, p.cfg.Burst), nil
}

// embedder returns nil when only fallback vectors should be used.
func (p *providers) embedder(ctx context.Context, provider string) (ai.Embedder, error) {
	switch provider {
	case "none":
		return nil, nil
	case "openai":
		c, err := p.openAIConfig()
		if err != nil {
			return nil, err
		}
		return openai.NewEmbedder(c)
	default:
		client, err := p.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return gemini.NewEmbedder(client, p.cfg.Gemini.EmbeddingModel), nil
	}
}

func openEmbeddings(ctx context.Context, cfg EmbeddingsConfig, backend ai.Embedder, persister store.Persister[[]float32], logger *zap.Logger) *embedding.Provider {
	return embedding.NewProvider(ctx, backend, persister,
		embedding.WithDimensions(cfg.Dimensions),
		embedding.WithFlushEvery(cfg.FlushEvery),
		embedding.WithLogger(logger),
	)
}

func openCache(ctx context.Context, cfg CacheConfig, persister store.Persister[cache.Entry], logger *zap.Logger) *cache.Cache {
	return cache.Open(ctx, persister,
		cache.WithFlushEvery(cfg.FlushEvery),
		cache.WithFlushInterval(cfg.FlushInterval),
		cache.WithMaxAge(cfg.MaxAge),
		cache.WithLogger(logger),
	)
}
