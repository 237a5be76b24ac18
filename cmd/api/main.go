package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Minalinnski/ai-art-generation/internal/artstyle"
	"github.com/Minalinnski/ai-art-generation/internal/assets"
	"github.com/Minalinnski/ai-art-generation/internal/http/handlers"
	"github.com/Minalinnski/ai-art-generation/internal/http/httpapi"
	"github.com/Minalinnski/ai-art-generation/internal/infra"
	"github.com/Minalinnski/ai-art-generation/internal/providers/ai"
	"github.com/Minalinnski/ai-art-generation/internal/reference"
	"github.com/Minalinnski/ai-art-generation/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL, []byte(cfg.SignSecret))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store")
	}

	catalog, err := ai.LoadModelCatalog(cfg.ModelCatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load model catalog")
	}

	factory := ai.NewFactory(cfg.DefaultProvider)
	retryOpts := ai.RetryOptions{
		MaxAttempts:    uint64(cfg.RetryMaxAttempts),
		CallsPerMinute: cfg.ProviderRatePerMin,
		Logger:         logger,
	}
	if cfg.OpenAIAPIKey != "" {
		openai, err := ai.NewOpenAIClient(ai.OpenAIOptions{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Models:  catalog.ModelsFor("openai"),
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize openai provider")
		}
		factory.Register(ai.WithRetry(openai, retryOpts))
	}
	if cfg.ReplicateAPIKey != "" {
		replicate, err := ai.NewReplicateClient(ai.ReplicateOptions{
			APIToken: cfg.ReplicateAPIKey,
			BaseURL:  cfg.ReplicateBaseURL,
			Models:   catalog.ModelsFor("replicate"),
			Logger:   logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize replicate provider")
		}
		factory.Register(ai.WithRetry(replicate, retryOpts))
	}

	presets := artstyle.NewCatalog()
	if cfg.StyleConfigPath != "" {
		presets, err = artstyle.LoadCatalog(cfg.StyleConfigPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load style presets")
		}
	}

	registry := assets.NewRegistry()
	if cfg.ModuleConfigPath != "" {
		registry, err = assets.LoadRegistry(cfg.ModuleConfigPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load module registry")
		}
	}

	resolver := artstyle.NewResolver(artstyle.Options{
		Catalog:    presets,
		Providers:  factory,
		Store:      store,
		MaxImages:  cfg.MaxStyleImages,
		TempPrefix: cfg.TempPrefix + "/art-style",
		SignTTL:    cfg.SignedURLTTL,
		Logger:     logger,
	})
	executor := assets.NewExecutor(assets.ExecutorOptions{
		Providers:  factory,
		Store:      store,
		OutputBase: cfg.OutputBase,
		MaxWorkers: cfg.MaxConcurrentTasks,
		Logger:     logger,
	})
	orchestrator := assets.NewOrchestrator(registry, resolver, executor, logger)
	ingestor := reference.NewIngestor(reference.IngestorOptions{
		Registry:   registry,
		Store:      store,
		TempPrefix: cfg.TempPrefix + "/reference",
		SignTTL:    cfg.SignedURLTTL,
		Logger:     logger,
	})

	app := handlers.NewApp(orchestrator, resolver, ingestor, store, cfg.MaxStyleImages, logger)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		RateLimitPerMin: cfg.RateLimitPerMin,
		AllowedOrigins:  cfg.AllowedOrigins,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("api listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
