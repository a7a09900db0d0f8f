package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vittoclass/libel-IA/internal/config"
	"github.com/vittoclass/libel-IA/internal/database"
	"github.com/vittoclass/libel-IA/internal/handler"
	"github.com/vittoclass/libel-IA/internal/middleware"
	"github.com/vittoclass/libel-IA/internal/models"
	"github.com/vittoclass/libel-IA/internal/repository"
	"github.com/vittoclass/libel-IA/internal/router"
	"github.com/vittoclass/libel-IA/internal/service"
	"github.com/vittoclass/libel-IA/pkg/ai"
	cloud "github.com/vittoclass/libel-IA/pkg/cloudinary"
	"github.com/vittoclass/libel-IA/pkg/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Evaluation{}, &models.Instruction{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// The cache is an optimization, not a dependency: the memoria
	// endpoints answer from Postgres when Redis is absent.
	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer cache.Close()
	} else {
		logger.Warn().Msg("redis url not configured, memoria caching disabled")
	}

	// External providers are optional at boot. A missing credential keeps
	// the matching endpoint in a 503 state instead of stopping the process.
	var analyzer service.DocumentAnalyzer
	if cfg.HasVisionCredentials() {
		client, err := vision.New(vision.Config{
			Endpoint:        cfg.AzureEndpoint,
			SubscriptionKey: cfg.AzureKey,
			Language:        cfg.AzureLanguage,
			PollInterval:    cfg.OCRPollInterval,
			MaxPollAttempts: cfg.OCRMaxAttempts,
			Logger:          logger,
		})
		if err != nil {
			log.Fatalf("failed to create vision client: %v", err)
		}
		analyzer = client
	} else {
		logger.Warn().Msg("azure credentials not configured, OCR disabled")
	}

	var evaluator ai.Evaluator
	if cfg.MistralAPIKey != "" {
		mistral, err := ai.NewMistralEvaluator(ai.MistralConfig{
			APIKey:  cfg.MistralAPIKey,
			Model:   cfg.MistralModel,
			Timeout: cfg.MistralTimeout,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create mistral evaluator: %v", err)
		}
		evaluator = mistral
	} else {
		logger.Warn().Msg("mistral api key not configured, evaluation disabled")
	}

	var archiver service.FileUploader
	if cfg.HasCloudinaryCredentials() {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		archiver = uploader
	} else {
		logger.Warn().Msg("cloudinary credentials not configured, document archiving disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationRepo := repository.NewEvaluationRepository(db)
	instructionRepo := repository.NewInstructionRepository(db)

	resolver := service.NewInstructionResolver(instructionRepo, logger)
	evaluationService := service.NewEvaluationService(resolver, evaluator, validate, logger)
	memoryService := service.NewMemoryService(evaluationRepo, validate, cache, cfg.MemoryCacheTTL, logger)
	instructionService := service.NewInstructionService(instructionRepo, validate, logger)
	documentService := service.NewDocumentService(analyzer, archiver, logger)

	evaluationHandler := handler.NewEvaluationHandler(evaluationService, logger)
	ocrHandler := handler.NewOCRHandler(documentService, logger)
	memoryHandler := handler.NewMemoryHandler(memoryService, logger)
	instructionHandler := handler.NewInstructionHandler(instructionService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    25 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler:  evaluationHandler,
		OCRHandler:         ocrHandler,
		MemoryHandler:      memoryHandler,
		InstructionHandler: instructionHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
