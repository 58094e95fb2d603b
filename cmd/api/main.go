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
	"github.com/rs/zerolog"

	"github.com/dteguh/gradeflow-api/internal/config"
	"github.com/dteguh/gradeflow-api/internal/database"
	"github.com/dteguh/gradeflow-api/internal/events"
	"github.com/dteguh/gradeflow-api/internal/handler"
	"github.com/dteguh/gradeflow-api/internal/middleware"
	"github.com/dteguh/gradeflow-api/internal/repository"
	"github.com/dteguh/gradeflow-api/internal/router"
	"github.com/dteguh/gradeflow-api/internal/service"
	"github.com/dteguh/gradeflow-api/pkg/ai"
	"github.com/dteguh/gradeflow-api/pkg/classroom"
	cloud "github.com/dteguh/gradeflow-api/pkg/cloudinary"
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

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	classroomClient, err := classroom.New(classroom.Config{
		BaseURL: cfg.ClassroomBaseURL,
		Token:   cfg.ClassroomToken,
		Timeout: cfg.ClassroomTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create classroom client: %v", err)
	}

	grader, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.AIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create ai client: %v", err)
	}

	// Grading events are optional; without a broker the API runs standalone.
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		publisher = events.NewPublisher(conn, cfg.EventSubjectPrefix, logger)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	historyRepo := repository.NewGradeHistoryRepository(db)

	exportService := service.NewExportService(uploader, logger)
	sessionService := service.NewSessionService(classroomClient, grader, exportService, historyRepo, publisher, validate, logger)
	keyGenService := service.NewKeyGenService(classroomClient, grader, validate, logger)
	analyticsService := service.NewAnalyticsService(historyRepo, redisClient, cfg.AnalyticsCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:    handler.NewCourseHandler(classroomClient, logger),
		SessionHandler:   handler.NewSessionHandler(sessionService, logger),
		KeyGenHandler:    handler.NewKeyGenHandler(keyGenService, logger),
		AnalyticsHandler: handler.NewAnalyticsHandler(analyticsService, logger),
		HistoryHandler:   handler.NewHistoryHandler(historyRepo, logger),
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
		GradeLimiter:     middleware.RateLimit("grading", cfg.GradeRateLimitMax, cfg.GradeRateLimitWindow),
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
