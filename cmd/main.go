package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"availability-service/internal/config"
	"availability-service/internal/database/minio"
	"availability-service/internal/database/postgres"
	"availability-service/internal/database/redis"
	"availability-service/internal/event"
	"availability-service/internal/handlers"
	"availability-service/internal/repository"
	"availability-service/internal/services"
	"availability-service/internal/worker"

	"github.com/gofiber/fiber/v3"
	goredis "github.com/redis/go-redis/v9"
)

func setupLogging() (*os.File, error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic: %v\n", r)
		}
	}()

	logDir := filepath.Join("/greenpay", "log", "availability_service")
	err := os.MkdirAll(logDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	currentTime := time.Now()
	logFileName := fmt.Sprintf("log_%s.log", currentTime.Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), nil)
	slog.SetDefault(slog.New(handler))

	return file, nil
}

func main() {
	logFile, err := setupLogging()
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	cfg := config.New()

	slog.Info("Connecting to PostgreSQL",
		"host", cfg.PostgresCfg.Host,
		"port", cfg.PostgresCfg.Port,
		"dbname", cfg.PostgresCfg.DBname)
	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		slog.Error("error connect to database", "error", err)
		go postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	// Redis, MinIO and RabbitMQ are all optional: the engine computes and
	// serves results without them, just without caching, report archiving
	// or events.
	var resolvedCache *goredis.Client
	redisClient, err := redis.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		slog.Warn("Redis unavailable, policy resolution cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		resolvedCache = redisClient.GetClient()
	}

	minioClient, err := minio.NewMinioClient(cfg.MinioCfg)
	if err != nil {
		slog.Warn("MinIO unavailable, report archiving disabled", "error", err)
		minioClient = nil
	}

	var publisher *event.ComputePublisher
	rabbitConn, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
	if err != nil {
		slog.Warn("RabbitMQ unavailable, compute events disabled", "error", err)
	} else {
		defer rabbitConn.Close()
		publisher = event.NewComputePublisher(rabbitConn)
	}

	policyRepo := repository.NewPolicyRepository(db, resolvedCache)
	telemetryRepo := repository.NewTelemetryRepository(db)
	resultRepo := repository.NewResultRepository(db)

	vocab := services.VocabularyFromConfig(cfg.VocabCfg)
	policyService := services.NewPolicyService(policyRepo)
	availabilityService := services.NewAvailabilityService(policyService, telemetryRepo, resultRepo, publisher, vocab)
	metricsService := services.NewMetricsService(policyService, resultRepo)
	exportService := services.NewExportService(availabilityService, resultRepo, minioClient)

	app := fiber.New()
	app.Get("/checkhealth", func(c fiber.Ctx) error {
		if redisClient != nil && !redisClient.Healthy(c.Context()) {
			slog.Warn("Health check: Redis ping failed")
		}
		return c.Status(fiber.StatusOK).SendString("Availability service is healthy")
	})

	handlers.NewPolicyHandler(policyService).Register(app)
	handlers.NewAvailabilityHandler(availabilityService).Register(app)
	handlers.NewBIHandler(availabilityService).Register(app)
	handlers.NewMetricsHandler(metricsService).Register(app)
	handlers.NewExportHandler(exportService).Register(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var poolWg sync.WaitGroup
	if cfg.RecomputeCfg.Enabled {
		pool := worker.NewWorkingPool(cfg.RecomputeCfg.Workers, 16)
		poolWg.Add(1)
		go pool.Start(ctx, &poolWg)

		scheduler := worker.NewJobScheduler("recompute", cfg.RecomputeCfg.Interval, pool)
		scheduler.AddJob(worker.NewRecomputeJob(availabilityService))
		go scheduler.Run(ctx)

		slog.Info("Recompute scheduler enabled",
			"interval", cfg.RecomputeCfg.Interval,
			"workers", cfg.RecomputeCfg.Workers)
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := app.Listen(fmt.Sprintf("0.0.0.0:%s", cfg.Port)); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-shutdownChan
	slog.Info("Shutting down server")
	cancel()
	poolWg.Wait()
}
