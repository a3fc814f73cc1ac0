package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/embedding"
	geminiembed "github.com/jobhelper/jobhelper/internal/embedding/gemini"
	openaiembed "github.com/jobhelper/jobhelper/internal/embedding/openai"
	"github.com/jobhelper/jobhelper/internal/logger"
	"github.com/jobhelper/jobhelper/internal/secrets"
)

const (
	app = "jobhelper"

	defaultEmbeddingFile = "profile_embedding.bin"
)

type Config struct {
	ProfilePath string           `mapstructure:"profile-path"`
	DataDir     string           `mapstructure:"data-dir"`
	Embedding   *EmbeddingConfig `mapstructure:"embedding"`
	Matching    *MatchingConfig  `mapstructure:"matching"`
	Intake      *IntakeConfig    `mapstructure:"intake"`
}

type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"`
	Model     string        `mapstructure:"model"`
	CacheFile string        `mapstructure:"cache-file"`
	Gemini    *GeminiConfig `mapstructure:"gemini"`
	OpenAI    *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type MatchingConfig struct {
	TechnicalWeight   float64 `mapstructure:"technical-weight"`
	CultureWeight     float64 `mapstructure:"culture-weight"`
	MinTechnicalScore float64 `mapstructure:"min-technical-score"`
	MinCultureScore   float64 `mapstructure:"min-culture-score"`
	MinOverallScore   float64 `mapstructure:"min-overall-score"`
}

type IntakeConfig struct {
	Model string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobhelper matches saved job postings against your candidate profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"data-dir":                     "JOBHELPER_DATA_DIR",
		"embedding.model":              "EMBEDDING_MODEL",
		"embedding.gemini.api-key":     "GEMINI_API_KEY",
		"embedding.openai.api-key":     "OPENAI_API_KEY",
		"matching.technical-weight":    "TECHNICAL_WEIGHT",
		"matching.culture-weight":      "CULTURE_WEIGHT",
		"matching.min-technical-score": "MIN_TECHNICAL_SCORE",
		"matching.min-culture-score":   "MIN_CULTURE_SCORE",
		"matching.min-overall-score":   "MIN_OVERALL_SCORE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("profile-path", "job_profile_document.md")
	viper.SetDefault("data-dir", "data")
	viper.SetDefault("embedding.provider", "gemini")
	viper.SetDefault("embedding.gemini.max-retries", 2)
	viper.SetDefault("matching.technical-weight", 0.6)
	viper.SetDefault("matching.culture-weight", 0.4)
	viper.SetDefault("matching.min-technical-score", 0.65)
	viper.SetDefault("matching.min-culture-score", 0.50)
	viper.SetDefault("matching.min-overall-score", 0.60)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobhelper.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		// An explicitly requested config file must parse.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// The default config file is optional; env and defaults cover everything.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// embeddingCachePath resolves the profile embedding location, defaulting to
// a file inside the data directory.
func (c *Config) embeddingCachePath() string {
	if c.Embedding != nil && strings.TrimSpace(c.Embedding.CacheFile) != "" {
		return c.Embedding.CacheFile
	}
	return filepath.Join(c.DataDir, defaultEmbeddingFile)
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(ctx context.Context, config *Config, zlogger *zap.Logger) (embedding.Embedder, error) {
	if config.Embedding == nil {
		return nil, fmt.Errorf("embedding configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(config.Embedding.Provider))
	switch provider {
	case "", "gemini":
		gcfg := config.Embedding.Gemini
		if gcfg == nil {
			gcfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: gcfg.APIKey,
			File:  gcfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		embedLogger := zlogger.With(
			zap.String("provider", "gemini"),
			zap.String("model", config.Embedding.Model),
		)

		return geminiembed.NewClient(ctx, apiKey, config.Embedding.Model, gcfg.MaxRetries, embedLogger)
	case "openai":
		ocfg := config.Embedding.OpenAI
		if ocfg == nil {
			ocfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: ocfg.APIKey,
			File:  ocfg.APIKeyFile,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set embedding.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		return openaiembed.NewClient(apiKey, config.Embedding.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", config.Embedding.Provider)
	}
}
