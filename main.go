package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Namenomeaning/chemistry-chatbot/catalog"
	"github.com/Namenomeaning/chemistry-chatbot/config"
	"github.com/Namenomeaning/chemistry-chatbot/conversation"
	"github.com/Namenomeaning/chemistry-chatbot/database"
	apperrors "github.com/Namenomeaning/chemistry-chatbot/errors"
	"github.com/Namenomeaning/chemistry-chatbot/lookup"
	"github.com/Namenomeaning/chemistry-chatbot/oracle"
	"github.com/Namenomeaning/chemistry-chatbot/pipeline"
	"github.com/Namenomeaning/chemistry-chatbot/web"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	if cfg.GeminiAPIKey == "" {
		logger.Fatal("GEMINI_API_KEY is required")
	}

	// Conversation history lives in Postgres when a DSN is configured, else
	// in process memory.
	var store conversation.Store = conversation.NewMemoryStore()
	var pgStore *database.PostgresStore
	if cfg.DatabaseURL != "" {
		pgStore, err = database.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to ensure database schema", zap.Error(err))
		}
		store = pgStore
		logger.Info("Using Postgres conversation store")
	} else {
		logger.Info("Using in-memory conversation store")
	}

	cat, err := loadCatalog(ctx, cfg, pgStore)
	if err != nil {
		logger.Fatal("Failed to load compound catalog", zap.Error(err))
	}
	logger.Info("Compound catalog loaded", zap.Int("records", cat.Len()))

	embedder, err := lookup.NewGeminiEmbedding(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		logger.Fatal("Failed to initialize embedder", zap.Error(err))
	}

	hybrid, err := lookup.NewHybrid(ctx, cat, embedder, lookup.HybridConfig{
		RRFRankConstant: cfg.RRFRankConstant,
		PrefetchLimit:   cfg.PrefetchLimit,
		CacheSize:       cfg.LookupCacheSize,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to build hybrid searcher", zap.Error(err))
	}
	lexical := lookup.NewLexical(cat, cfg.FuzzyThreshold, logger)

	client := oracle.NewGeminiClient(cfg, logger)
	pipe := pipeline.New(client, store, hybrid, lexical, cat, cfg, logger)

	webServer := web.NewServer(pipe, logger, cfg)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting chemistry chatbot web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}

// loadCatalog prefers the compounds table when Postgres is configured and
// falls back to the bundled JSON snapshot.
func loadCatalog(ctx context.Context, cfg *config.Config, pgStore *database.PostgresStore) (*catalog.Catalog, error) {
	if pgStore != nil {
		records, err := pgStore.LoadCompounds(ctx)
		if err == nil && len(records) > 0 {
			return catalog.New(records), nil
		}
	}
	records, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrCatalogUnavailable, err.Error())
	}
	return catalog.New(records), nil
}
