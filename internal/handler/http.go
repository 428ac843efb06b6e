package handler

import (
	"context"
	"net/http"
	"time"

	"finance-tracker/shared/middleware"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck - зависимость, доступность которой проверяет /health.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// RouterConfig - параметры HTTP роутера.
type RouterConfig struct {
	Env            string
	BasePath       string
	AllowedOrigins []string
	// Лимит запросов к REST API с одного IP в минуту; 0 отключает лимит.
	APIRateLimitPerMinute uint
	// Если задан, счетчики лимита хранятся в Redis.
	RedisClient *redis.Client
}

// RouterDeps - обработчики и middleware, собранные в main.
type RouterDeps struct {
	Notifications *NotificationHandler
	Auth          gin.HandlerFunc
	// WebSocket и HandshakeLimit равны nil, если уведомления в реальном времени выключены.
	WebSocket      *WebSocketHandler
	HandshakeLimit gin.HandlerFunc
	HealthChecks   []HealthCheck
	// Внутренний прием доменных событий; регистрируется только вместе с InternalAuth.
	Events       *EventsHandler
	InternalAuth gin.HandlerFunc
}

// NewRouter собирает gin.Engine со всеми маршрутами сервиса.
func NewRouter(cfg RouterConfig, deps RouterDeps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(logger, "/health", "/metrics"))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		logger.Info("FRONTEND_URL not set, allowing default origin", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Метрики gin_* и маршрут /metrics.
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	health := healthHandler(deps.HealthChecks, logger)
	router.GET("/health", health)
	router.HEAD("/health", health)

	if deps.WebSocket != nil {
		wsChain := []gin.HandlerFunc{}
		if deps.HandshakeLimit != nil {
			wsChain = append(wsChain, deps.HandshakeLimit)
		}
		wsChain = append(wsChain, deps.WebSocket.ServeWS)
		router.GET("/ws", wsChain...)
	}

	if deps.Events != nil && deps.InternalAuth != nil {
		deps.Events.RegisterRoutes(router, deps.InternalAuth)
	}

	api := router.Group(cfg.BasePath)
	apiMiddlewares := []gin.HandlerFunc{}
	if limiter := apiRateLimiter(cfg, logger); limiter != nil {
		apiMiddlewares = append(apiMiddlewares, limiter)
	}
	if deps.Auth != nil {
		apiMiddlewares = append(apiMiddlewares, deps.Auth)
	}
	if deps.Notifications != nil {
		deps.Notifications.RegisterRoutes(api, apiMiddlewares...)
	}

	return router
}

func apiRateLimiter(cfg RouterConfig, logger *zap.Logger) gin.HandlerFunc {
	if cfg.APIRateLimitPerMinute == 0 {
		return nil
	}

	var store ratelimit.Store
	if cfg.RedisClient != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: cfg.RedisClient,
			Rate:        time.Minute,
			Limit:       cfg.APIRateLimitPerMinute,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: cfg.APIRateLimitPerMinute,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			logger.Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

func healthHandler(checks []HealthCheck, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := check.Ping(ctx)
			cancel()
			if err != nil {
				logger.Warn("Health check failed", zap.String("dependency", check.Name), zap.Error(err))
				results[check.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[check.Name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{"status": overall, "checks": results})
	}
}
