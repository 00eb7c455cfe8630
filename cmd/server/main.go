package main

import (
	"context"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pendium/hippo-admin/internal/adapters/database"
	"github.com/pendium/hippo-admin/internal/config"
	"github.com/pendium/hippo-admin/internal/handlers"
	"github.com/pendium/hippo-admin/internal/infrastructure/redis"
	"github.com/pendium/hippo-admin/internal/infrastructure/stripe"
	"github.com/pendium/hippo-admin/internal/logging"
	"github.com/pendium/hippo-admin/internal/middleware"
	"github.com/pendium/hippo-admin/internal/repositories"
	"github.com/pendium/hippo-admin/internal/server"
	"github.com/pendium/hippo-admin/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Environment, cfg.Log)
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting admin analytics server...",
		zap.String("environment", cfg.Environment),
		zap.String("version", cfg.Version))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, database.Config{
		ConnectionString: cfg.DatabaseURL,
		MaxConns:         10,
		MaxLifetime:      time.Hour,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database ready")

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() {
		_ = redisClient.Close()
	}()

	// Repositories
	chatRepo := repositories.NewChatLogRepository(pool, cfg.Analytics.Timezone)
	featureRepo := repositories.NewFeatureInteractionRepository(pool)
	feedbackRepo := repositories.NewFeedbackRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	betaRepo := repositories.NewBetaUserRepository(pool)
	usageRepo := repositories.NewUsageRepository(pool)

	// Services
	resolver, err := services.NewWindowResolver(cfg.Analytics.Timezone, logger)
	if err != nil {
		logger.Fatal("Failed to load analytics timezone", zap.Error(err))
	}
	cohorts := services.NewCohortService(betaRepo)
	billingSvc := services.NewBillingService(stripe.NewClient(cfg.StripeAPIKey), logger)
	kpiSvc := services.NewKPIService(
		chatRepo, featureRepo, feedbackRepo, userRepo, billingSvc, resolver, cfg.Analytics, logger)
	userSvc := services.NewUserService(userRepo, betaRepo, chatRepo, resolver, logger)
	betaSvc := services.NewBetaListService(betaRepo, logger)
	chatSvc := services.NewChatLogService(chatRepo, resolver, logger)

	// Nightly KPI snapshot warming; the KPI handler serves the warmed
	// payloads for matching dashboard requests.
	var snapshots handlers.SnapshotSource
	if cfg.Analytics.SnapshotCron != "" {
		scheduler := services.NewKPIScheduler(
			kpiSvc,
			redis.NewSnapshotCache(redisClient),
			resolver,
			cfg.Analytics.SnapshotCron,
			cfg.Analytics.SnapshotTTL,
			logger,
		)
		if err := scheduler.Start(); err != nil {
			logger.Fatal("Failed to start KPI scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
		snapshots = scheduler
	}

	srv := server.New(cfg, &server.Handlers{
		KPI:            handlers.NewKPIHandler(kpiSvc, resolver, cohorts, snapshots),
		Users:          handlers.NewUserHandler(userSvc),
		BetaList:       handlers.NewBetaListHandler(betaSvc),
		ChatLogs:       handlers.NewChatLogHandler(chatSvc),
		Usage:          handlers.NewUsageHandler(usageRepo),
		Pipeline:       handlers.NewPipelineHandler(cfg.PipelineStatusURL, logger),
		TokenValidator: middleware.NewJWTValidator(cfg.JWTSecret),
		RateLimiter:    redis.NewRateLimiter(redisClient),
	}, logger)
	srv.Setup()

	if err := srv.Start(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}
