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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/econova/econova-api/internal/catalog"
	"github.com/econova/econova-api/internal/config"
	"github.com/econova/econova-api/internal/database"
	"github.com/econova/econova-api/internal/handler"
	"github.com/econova/econova-api/internal/middleware"
	"github.com/econova/econova-api/internal/repository"
	"github.com/econova/econova-api/internal/router"
	"github.com/econova/econova-api/internal/scoring"
	"github.com/econova/econova-api/internal/service"
	cloud "github.com/econova/econova-api/pkg/cloudinary"
	"github.com/econova/econova-api/pkg/vision"
)

// visionAnalyzer bridges the vision client into the scoring pipeline.
type visionAnalyzer struct {
	analyzer vision.Analyzer
}

func (v visionAnalyzer) Analyze(ctx context.Context, input scoring.AnalyzerInput) (scoring.AnalyzerResult, error) {
	result, err := v.analyzer.Analyze(ctx, vision.Input{
		ImageData:   input.ImageData,
		TaskType:    input.TaskType,
		Description: input.Description,
	})
	if err != nil {
		return scoring.AnalyzerResult{}, err
	}

	return scoring.AnalyzerResult{
		Confidence: result.Confidence,
		Feedback:   result.Feedback,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	taskCatalog, err := catalog.Load()
	if err != nil {
		log.Fatalf("failed to load task catalog: %v", err)
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, caching and pub/sub disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not configured, cross-node notification relay disabled")
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudService, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudService
	} else {
		logger.Warn().Msg("cloudinary not configured, evidence images will not be stored")
	}

	var analyzer scoring.Analyzer
	if cfg.OpenAIAPIKey != "" {
		visionClient, err := vision.NewOpenAIAnalyzer(vision.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.VisionModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create vision analyzer: %v", err)
		}
		analyzer = visionAnalyzer{analyzer: visionClient}
	} else {
		logger.Warn().Msg("openai api key not configured, photo evidence scored heuristically")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	scorer := scoring.NewScorer(analyzer, cfg.ScoringThreshold, logger)

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, "econova", natsConn, validate, logger)
	progressionService := service.NewProgressionService(userRepo, submissionRepo, taskCatalog, notificationService, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, userRepo, validate, logger)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		taskCatalog,
		scorer,
		uploader,
		progressionService,
		assignmentService,
		notificationService,
		validate,
		cfg.UploadMaxBytes(),
		logger,
	)
	userService := service.NewUserService(userRepo, validate, logger)
	dashboardService := service.NewDashboardService(userRepo, assignmentRepo, submissionRepo, progressionService, redisClient, cfg.DashboardCacheTTL, logger)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	notificationService.Start(runCtx)

	catalogHandler := handler.NewCatalogHandler(taskCatalog, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, dashboardService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	progressHandler := handler.NewProgressHandler(progressionService, dashboardService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CatalogHandler:      catalogHandler,
		UserHandler:         userHandler,
		SubmissionHandler:   submissionHandler,
		AssignmentHandler:   assignmentHandler,
		ProgressHandler:     progressHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
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
