package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/skillmatch/internal/confidence"
	"github.com/spigell/skillmatch/internal/matching"
)

const (
	app       = "skillmatch"
	envPrefix = "SKILLMATCH"
)

type Config struct {
	Workers    int                `mapstructure:"workers" validate:"gte=1,lte=64"`
	Cache      CacheConfig        `mapstructure:"cache"`
	AI         AIConfig           `mapstructure:"ai"`
	Embeddings EmbeddingsConfig   `mapstructure:"embeddings"`
	Confidence confidence.Weights `mapstructure:"confidence"`
	Filters    FiltersConfig      `mapstructure:"filters"`
}

type CacheConfig struct {
	// Backend is json (flat files), badger or memory.
	Backend       string        `mapstructure:"backend" validate:"oneof=json badger memory"`
	Dir           string        `mapstructure:"dir" validate:"required_unless=Backend memory"`
	FlushEvery    int           `mapstructure:"flush-every" validate:"gte=1"`
	FlushInterval time.Duration `mapstructure:"flush-interval" validate:"gte=0"`
	MaxAge        time.Duration `mapstructure:"max-age" validate:"gte=0"`
}

type AIConfig struct {
	// Provider of the judgment service; none compares by embeddings only.
	Provider     string        `mapstructure:"provider" validate:"oneof=gemini openai none"`
	RateLimit    float64       `mapstructure:"rate-limit" validate:"gte=0"`
	Burst        int           `mapstructure:"burst" validate:"gte=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
}

type OpenAIConfig struct {
	BaseURL            string `mapstructure:"base-url" validate:"omitempty,url"`
	Token              string `mapstructure:"token"`
	TokenFile          string `mapstructure:"token-file"`
	Model              string `mapstructure:"model"`
	EmbeddingModel     string `mapstructure:"embedding-model"`
	EmbeddingBatchSize int    `mapstructure:"embedding-batch-size" validate:"gte=0"`
}

type EmbeddingsConfig struct {
	// Provider of the embedding backend; none uses hashed fallback vectors only.
	Provider   string `mapstructure:"provider" validate:"oneof=gemini openai none"`
	Dimensions int    `mapstructure:"dimensions" validate:"gte=1"`
	FlushEvery int    `mapstructure:"flush-every" validate:"gte=1"`
}

type FiltersConfig struct {
	Excluded    []string `mapstructure:"excluded"`
	ExcludeFile string   `mapstructure:"exclude-file"`
	Disabled    []string `mapstructure:"disabled" validate:"dive,oneof=blank duplicates excluded"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "skillmatch compares a candidate's skills with a job's, bucket by bucket",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd == versionCmd {
				return nil
			}
			return initConfig(viper.GetViper(), cfgFile)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("workers", matching.DefaultWorkers)

	v.SetDefault("cache.backend", "json")
	v.SetDefault("cache.dir", ".skillmatch")
	v.SetDefault("cache.flush-every", 10)
	v.SetDefault("cache.flush-interval", 0)
	v.SetDefault("cache.max-age", 0)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.rate-limit", 0)
	v.SetDefault("ai.burst", 1)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.embedding-model", "gemini-embedding-001")
	v.SetDefault("ai.gemini.max-retries", 1)
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ai.openai.token", "")
	v.SetDefault("ai.openai.token-file", "")
	v.SetDefault("ai.openai.model", "")
	v.SetDefault("ai.openai.embedding-model", "")
	v.SetDefault("ai.openai.embedding-batch-size", 0)

	v.SetDefault("embeddings.provider", "gemini")
	v.SetDefault("embeddings.dimensions", 256)
	v.SetDefault("embeddings.flush-every", 50)

	v.SetDefault("confidence.judgment", confidence.DefaultWeights.Judgment)
	v.SetDefault("confidence.embedding", confidence.DefaultWeights.Embedding)
	v.SetDefault("confidence.relevance", confidence.DefaultWeights.Relevance)

	v.SetDefault("filters.excluded", []string{})
	v.SetDefault("filters.exclude-file", "")
	v.SetDefault("filters.disabled", []string{})
}

// initConfig loads .env files, the environment and the optional config file
// into v. An explicitly named config file must exist.
func initConfig(v *viper.Viper, file string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}
