package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/steentj/dho-sub001/internal/config"
	"github.com/steentj/dho-sub001/internal/core"
	"github.com/steentj/dho-sub001/internal/core/chunking"
	db "github.com/steentj/dho-sub001/internal/core/database"
	"github.com/steentj/dho-sub001/internal/core/ingestion_engine"
	"github.com/steentj/dho-sub001/internal/core/llm"
	objectclient "github.com/steentj/dho-sub001/internal/core/object-client"
	"github.com/steentj/dho-sub001/internal/core/vectorstore"
	"github.com/steentj/dho-sub001/internal/search"
)

// App owns every long-lived dependency of both binaries.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    core.BookStore
	Embedder core.EmbeddingProvider
	Ingestor *ingestion_engine.BookIngestor
	Queue    *ingestion_engine.Queue
	Search   *search.Service
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	for _, w := range cfg.Warnings {
		logger.Warn("config", zap.String("warning", w))
	}

	operator, err := core.ParseDistanceOperator(cfg.DistanceOperator)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(appCtx, cfg, operator, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := NewEmbedder(appCtx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}
	logger.Info("embedding provider ready",
		zap.String("provider", embedder.Name()),
		zap.String("table", embedder.TableName()),
		zap.Int("dimensions", embedder.Dimensions()),
	)

	strategy, err := chunking.NewStrategy(cfg.ChunkingStrategy)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var objects core.ObjectClient
	if cfg.AwsAccessKey != "" || cfg.AwsSecretKey != "" {
		s3c, err := objectclient.NewS3Client(appCtx, cfg)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		objects = s3c
		logger.Info("object client initialized", zap.String("region", cfg.AwsRegion))
	}

	fetchTimeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	extractor := ingestion_engine.NewPDFExtractor(ingestion_engine.NewDocconvExtractor(false), logger)
	ingestor := ingestion_engine.NewBookIngestor(
		store,
		ingestion_engine.NewSourceFetcher(fetchTimeout, objects),
		extractor,
		embedder,
		strategy,
		ingestion_engine.IngestConfig{
			ChunkSize:        cfg.ChunkSize,
			Concurrency:      cfg.Concurrency,
			EmbedConcurrency: cfg.EmbedConcurrency,
			FetchTimeout:     fetchTimeout,
		},
		ingestion_engine.WithLogger(logger),
	)

	svc := search.NewService(store, embedder, operator,
		search.Aggregator{Threshold: cfg.DistanceThreshold, PageTags: cfg.SearchPageTags}, logger)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Embedder: embedder,
		Ingestor: ingestor,
		Queue:    ingestion_engine.NewQueue(ingestor, 64, logger),
		Search:   svc,
	}, nil
}

// NewStore opens the configured BookStore backend.
func NewStore(ctx context.Context, cfg *config.Config, operator core.DistanceOperator, logger *zap.Logger) (core.BookStore, error) {
	switch cfg.StoreBackend {
	case config.BackendQdrant:
		store, err := vectorstore.NewQdrantStore(ctx, vectorstore.Config{
			Host:     cfg.QdrantHost,
			Port:     cfg.QdrantPort,
			APIKey:   cfg.QdrantAPIKey,
			Operator: operator,
			PageSize: cfg.QdrantPageSize,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("qdrant initialized and ready", zap.String("host", cfg.QdrantHost))
		return store, nil
	default:
		store, err := db.NewDatabaseClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("database initialized and ready")
		return store, nil
	}
}

func NewEmbedder(ctx context.Context, cfg *config.Config) (core.EmbeddingProvider, error) {
	kind, err := llm.ParseProviderKind(cfg.Provider)
	if err != nil {
		return nil, err
	}
	return llm.NewEmbeddingProvider(ctx, kind, llm.Settings{
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
		Dimensions:    cfg.EmbedDim,
		Timeout:       60 * time.Second,
	})
}

func (a *App) Close() {
	if c, ok := a.Embedder.(io.Closer); ok {
		_ = c.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("close store", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}
