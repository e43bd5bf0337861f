package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/config"
	"github.com/appforge-ai/appforge-engine/pkg/database"
	"github.com/appforge-ai/appforge-engine/pkg/handlers"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
	"github.com/appforge-ai/appforge-engine/pkg/logging"
	"github.com/appforge-ai/appforge-engine/pkg/middleware"
	"github.com/appforge-ai/appforge-engine/pkg/ratelimit"
	"github.com/appforge-ai/appforge-engine/pkg/repositories"
	"github.com/appforge-ai/appforge-engine/pkg/services"
	"github.com/appforge-ai/appforge-engine/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()

	// Migrations run on the service-scoped connection.
	migrationDB, err := sql.Open("pgx", cfg.Database.ServiceConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, "migrations", logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	// Two pools, two privilege levels: the pipeline writes with the service
	// user, saved projects go through the anonymous user.
	serviceDB, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ServiceConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer serviceDB.Close()

	anonDB, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer anonDB.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	window := time.Duration(cfg.Limits.RateWindowSecs) * time.Second
	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, window, cfg.Limits.RateCeiling)
		logger.Info("Using Redis rate limiter")
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(window, cfg.Limits.RateCeiling)
		defer memLimiter.Close()
		limiter = memLimiter
	}

	// Vendor gateways. Anthropic and OpenAI keys are checked here, at first
	// use; the Gemini key was already required by config.Load.
	anthropicClient, err := llm.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, logger)
	if err != nil {
		logger.Fatal("Failed to create Anthropic client", zap.Error(err))
	}
	openaiClient, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	if err != nil {
		logger.Fatal("Failed to create OpenAI client", zap.Error(err))
	}
	geminiClient := llm.NewGeminiClient(cfg.Gemini.APIKey, cfg.Gemini.Model,
		time.Duration(cfg.Limits.VendorTimeoutSec)*time.Second, logger)

	appRepo := repositories.NewAppRepository(serviceDB)
	screenRepo := repositories.NewScreenRepository(serviceDB)
	componentRepo := repositories.NewComponentRepository(serviceDB)
	projectRepo := repositories.NewUserProjectRepository(anonDB)

	pipelineService := services.NewPipelineService(
		appRepo, screenRepo, componentRepo,
		anthropicClient, openaiClient,
		cfg.Anthropic, cfg.OpenAI, logger)
	generatorService := services.NewGeneratorService(
		geminiClient, anthropicClient, openaiClient,
		limiter, cfg.Limits, cfg.Gemini, logger)
	projectService := services.NewProjectService(projectRepo, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg).RegisterRoutes(mux)
	handlers.NewPipelineHandler(pipelineService, logger).RegisterRoutes(mux)
	handlers.NewGenerateHandler(generatorService, logger).RegisterRoutes(mux)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux)

	// Serve the embedded SPA at /.
	dist, err := fs.Sub(ui.DistFS(), "dist")
	if err != nil {
		logger.Fatal("Failed to load embedded UI", zap.Error(err))
	}
	mux.Handle("/", http.FileServer(http.FS(dist)))

	handler := middleware.RequestLogger(logger)(middleware.CORS()(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting appforge-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
