package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/handler"
	"finance-tracker/internal/messaging"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/repository/migrations"
	"finance-tracker/internal/service"
	"finance-tracker/pkg/migration"
	"finance-tracker/shared/authutils"
	"finance-tracker/shared/database"
	sharedLogger "finance-tracker/shared/logger"
	sharedMiddleware "finance-tracker/shared/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Service:  "finance-tracker",
		Env:      cfg.Env,
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	zap.ReplaceGlobals(logger)
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.Bool("realtimeNotifications", cfg.EnableRealtimeNotifications),
	)

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// --- External Connections ---
	pgPool, err := setupPostgres(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, pgPool, logger)
	if err := migrator.Up(rootCtx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	healthChecks := []handler.HealthCheck{{Name: "postgres", Ping: pgPool.Ping}}

	var redisClient *redis.Client
	var tokenStore authutils.AccessTokenStore
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		tokenRepo := database.NewRedisTokenRepository(redisClient, logger)
		pingCtx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		err := tokenRepo.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("address", cfg.RedisAddr))
		}
		logger.Info("Connected to Redis, access token revocation check enabled")
		tokenStore = tokenRepo
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Ping: tokenRepo.Ping})
	} else {
		logger.Info("REDIS_ADDR not set, access token revocation check disabled")
	}

	// --- Dependency Injection ---
	verifier, err := authutils.NewJWTVerifier(cfg.JWTSecret, tokenStore, logger)
	if err != nil {
		logger.Fatal("Failed to create JWT verifier", zap.Error(err))
	}

	notificationRepo := repository.NewPgNotificationRepository(pgPool, logger)
	notificationService := service.NewNotificationService(notificationRepo, logger)

	publisher := messaging.NewPublisher(messaging.PublisherConfig{
		URL:     cfg.RabbitMQURL,
		Enabled: cfg.EnableRealtimeNotifications,
	}, logger)
	events := service.NewNotificationEvents(publisher, logger)

	deps := handler.RouterDeps{
		Notifications: handler.NewNotificationHandler(notificationService, logger),
		Auth:          sharedMiddleware.GinAuthMiddleware(verifier.VerifyToken, cfg.AuthCookieName, logger),
		HealthChecks:  healthChecks,
	}

	if cfg.InterServiceSecret != "" {
		interVerifier, err := authutils.NewInterServiceVerifier(cfg.InterServiceSecret, logger)
		if err != nil {
			logger.Fatal("Failed to create inter-service verifier", zap.Error(err))
		}
		deps.Events = handler.NewEventsHandler(events, logger)
		deps.InternalAuth = sharedMiddleware.GinInterServiceAuthMiddleware(interVerifier.VerifyInterServiceToken, logger)
	} else {
		logger.Info("INTER_SERVICE_SECRET not set, internal event routes disabled")
	}

	var consumer *messaging.Consumer
	if cfg.EnableRealtimeNotifications {
		manager := handler.NewConnectionManager(logger)
		processor := messaging.NewProcessor(notificationRepo, manager, logger, cfg.PersistTimeout)
		consumer = messaging.NewConsumer(messaging.ConsumerConfig{
			URL:         cfg.RabbitMQURL,
			Concurrency: cfg.ConsumerConcurrency,
			RetryDelay:  cfg.ConsumerRetryDelay,
		}, processor, logger)

		deps.WebSocket = handler.NewWebSocketHandler(manager, verifier.VerifyToken, consumer, handler.WebSocketConfig{
			CookieName:     cfg.AuthCookieName,
			AllowedOrigins: cfg.GetAllowedOrigins(),
		}, logger)
		deps.HandshakeLimit = sharedMiddleware.NewRateLimiter(rootCtx, rate.Limit(cfg.WSHandshakeRPS), cfg.WSHandshakeBurst).Limit()

		consumer.Start(rootCtx)
		logger.Info("Realtime notifications enabled")
	} else {
		logger.Info("Realtime notifications disabled: consumer and /ws are not started")
	}

	// --- HTTP Server Setup (Gin) ---
	router := handler.NewRouter(handler.RouterConfig{
		Env:                   cfg.Env,
		BasePath:              cfg.APIBasePath,
		AllowedOrigins:        cfg.GetAllowedOrigins(),
		APIRateLimitPerMinute: cfg.APIRateLimitPerMinute,
		RedisClient:           redisClient,
	}, deps, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	if consumer != nil {
		consumer.Stop()
	}
	if err := publisher.Close(); err != nil {
		logger.Error("Error closing notification publisher", zap.Error(err))
	}
	stopRoot()

	logger.Info("Server exiting")
}

// setupPostgres создает пул соединений с повторными попытками.
func setupPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = cfg.DBMaxConns

	maxRetries := cfg.DBConnectRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	logger.Info("Attempting to connect to PostgreSQL", zap.Int("max_retries", maxRetries), zap.Duration("retry_delay", cfg.DBRetryDelay))

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		pool, err := connectPostgres(ctx, poolConfig)
		if err == nil {
			logger.Info("Successfully connected and pinged PostgreSQL", zap.Int("attempt", attempt))
			return pool, nil
		}
		lastErr = err
		logger.Warn("PostgreSQL connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.DBRetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", maxRetries, lastErr)
}

func connectPostgres(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create postgres connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping postgres database: %w", err)
	}
	return pool, nil
}
