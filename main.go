package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/haashim-ali/boggart/pkg/config"
	"github.com/haashim-ali/boggart/pkg/content"
	"github.com/haashim-ali/boggart/pkg/handlers"
	"github.com/haashim-ali/boggart/pkg/ingest"
	"github.com/haashim-ali/boggart/pkg/llm"
	"github.com/haashim-ali/boggart/pkg/media"
	"github.com/haashim-ali/boggart/pkg/middleware"
	"github.com/haashim-ali/boggart/pkg/pipeline"
	"github.com/haashim-ali/boggart/pkg/repositories"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("media_enabled", cfg.Media.Configured()))

	registry := ingest.NewGoogleRegistry(&cfg.Google, logger)

	// Stores
	users := repositories.NewMemoryUserStore()
	statuses := repositories.NewMemoryStatusStore(registry.Sources())
	mediaStatuses := repositories.NewMemoryMediaStatusStore()
	mediaFiles := repositories.NewMemoryMediaFileStore()

	// LLM backend
	client, err := llm.NewFromConfig(&cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to create LLM client", zap.Error(err))
	}

	// Pipeline
	pool := llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), logger)
	condenser := pipeline.NewCondenser(pipeline.NewLLMSummarizer(client), pool, logger)
	synthesizer := pipeline.NewSynthesizer(client, logger)
	coordinator := pipeline.NewCoordinator(registry, condenser, synthesizer, users, statuses, logger)

	// Media services, enabled only when an API key is configured.
	var (
		images       media.ImageGenerator
		videoManager *media.Manager
	)
	if cfg.Media.Configured() {
		images = media.NewGeminiImageGenerator(cfg.Media.APIKey, logger)
		videos := media.NewGeminiVideoGenerator(cfg.Media.APIKey, logger)
		videoManager = media.NewManager(videos, mediaStatuses, mediaFiles, media.ManagerConfig{
			Dir:             cfg.Media.VideoDir,
			PollInterval:    cfg.Media.PollInterval,
			MaxPollAttempts: cfg.Media.MaxPollAttempts,
		}, logger)
	} else {
		logger.Warn("media generation disabled: GOOGLE_AI_API_KEY not set")
	}

	generator := content.NewGenerator(client, images, videoManager, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewPipelineHandler(coordinator, logger).RegisterRoutes(mux)
	handlers.NewProfileHandler(users, logger).RegisterRoutes(mux)
	handlers.NewGenerateHandler(generator, users, logger).RegisterRoutes(mux)
	if videoManager != nil {
		handlers.NewMediaHandler(videoManager, users, logger).RegisterRoutes(mux)
	}

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting boggart",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" || env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
