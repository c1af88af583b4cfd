package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds the application's configuration
type Config struct {
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	WebPort     int    `mapstructure:"WEB_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	CatalogPath string `mapstructure:"CATALOG_PATH"`

	GeminiAPIKey         string        `mapstructure:"GEMINI_API_KEY"`
	GeminiBaseURL        string        `mapstructure:"GEMINI_BASE_URL"`
	GeminiModel          string        `mapstructure:"GEMINI_MODEL"`
	GeminiRelevanceModel string        `mapstructure:"GEMINI_RELEVANCE_MODEL"`
	EmbeddingModel       string        `mapstructure:"EMBEDDING_MODEL"`
	MaxOutputTokens      int           `mapstructure:"GEMINI_MAX_OUTPUT_TOKENS"`
	TopP                 float64       `mapstructure:"GEMINI_TOP_P"`
	MaxRetries           int           `mapstructure:"MAX_RETRIES"`
	RetryDelaySeconds    time.Duration `mapstructure:"RETRY_DELAY_SECONDS"`
	BackoffMaxSeconds    time.Duration `mapstructure:"BACKOFF_MAX_SECONDS"`
	BackoffJitterRatio   float64       `mapstructure:"BACKOFF_JITTER_RATIO"`
	OracleRequestTimeout time.Duration `mapstructure:"ORACLE_REQUEST_TIMEOUT"`

	PipelineTimeout       time.Duration `mapstructure:"PIPELINE_TIMEOUT"`
	HistoryAnswerMaxChars int           `mapstructure:"HISTORY_ANSWER_MAX_CHARS"`

	RAGTopK           int     `mapstructure:"RAG_TOP_K"`
	RAGScoreThreshold float64 `mapstructure:"RAG_SCORE_THRESHOLD"`
	RRFRankConstant   int     `mapstructure:"RRF_RANK_CONSTANT"`
	PrefetchLimit     int     `mapstructure:"PREFETCH_LIMIT"`
	FuzzyThreshold    float64 `mapstructure:"FUZZY_THRESHOLD"`
	LookupCacheSize   int     `mapstructure:"LOOKUP_CACHE_SIZE"`
}

func Load(logger *zap.Logger) *Config {
	var config Config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")        // For running locally
	viper.AddConfigPath("../")      // For running from docker subdir
	viper.AddConfigPath("./config") // Common config folder
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("WEB_PORT", 8090)
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("CATALOG_PATH", "data/chemistry_data.json")
	viper.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	viper.SetDefault("GEMINI_RELEVANCE_MODEL", "gemini-2.0-flash")
	viper.SetDefault("EMBEDDING_MODEL", "gemini-embedding-001")
	viper.SetDefault("GEMINI_MAX_OUTPUT_TOKENS", 1024)
	viper.SetDefault("GEMINI_TOP_P", 0.95)
	viper.SetDefault("MAX_RETRIES", 3)
	viper.SetDefault("RETRY_DELAY_SECONDS", 2)
	viper.SetDefault("BACKOFF_MAX_SECONDS", 30)
	viper.SetDefault("BACKOFF_JITTER_RATIO", 0.1)
	viper.SetDefault("ORACLE_REQUEST_TIMEOUT", 60)
	viper.SetDefault("PIPELINE_TIMEOUT", 45)
	viper.SetDefault("HISTORY_ANSWER_MAX_CHARS", 400)
	viper.SetDefault("RAG_TOP_K", 3)
	viper.SetDefault("RAG_SCORE_THRESHOLD", 0.4)
	viper.SetDefault("RRF_RANK_CONSTANT", 60)
	viper.SetDefault("PREFETCH_LIMIT", 10)
	viper.SetDefault("FUZZY_THRESHOLD", 0.7)
	viper.SetDefault("LOOKUP_CACHE_SIZE", 256)

	if err := viper.ReadInConfig(); err != nil {
		if logger != nil {
			logger.Warn("Could not read config file, using defaults/env vars", zap.Error(err))
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		// Config unmarshaling is critical - fail fast during bootstrap
		if logger != nil {
			logger.Fatal("Unable to decode config into struct", zap.Error(err))
		} else {
			fmt.Fprintf(os.Stderr, "FATAL: Unable to decode config into struct: %v\n", err)
			os.Exit(1)
		}
	}

	// Convert seconds to proper time.Duration
	config.RetryDelaySeconds = config.RetryDelaySeconds * time.Second
	config.BackoffMaxSeconds = config.BackoffMaxSeconds * time.Second
	config.OracleRequestTimeout = config.OracleRequestTimeout * time.Second
	config.PipelineTimeout = config.PipelineTimeout * time.Second

	// Normalize ranking parameters so a bad config cannot disable retrieval.
	if config.RAGTopK <= 0 {
		config.RAGTopK = 3
	}
	if config.PrefetchLimit < config.RAGTopK {
		config.PrefetchLimit = config.RAGTopK
	}
	if config.RRFRankConstant <= 0 {
		config.RRFRankConstant = 60
	}
	if config.FuzzyThreshold <= 0 || config.FuzzyThreshold > 1 {
		config.FuzzyThreshold = 0.7
	}

	return &config
}
