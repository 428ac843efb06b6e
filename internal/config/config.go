package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"finance-tracker/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"5000"`
	APIBasePath string `envconfig:"API_BASE_PATH" default:"/api/v1.0.0"`

	// Секреты: если переменная пуста, значение читается из /run/secrets.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	JWTSecret   string `envconfig:"JWT_SECRET"`
	// Секрет межсервисных токенов; пустое значение отключает /internal маршруты.
	InterServiceSecret string `envconfig:"INTER_SERVICE_SECRET"`

	DBMaxConns       int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	DBConnectRetries int           `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	DBRetryDelay     time.Duration `envconfig:"DB_RETRY_DELAY" default:"3s"`

	// Redis используется для проверки отзыва access-токенов; пустой адрес отключает проверку.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	AuthCookieName string `envconfig:"AUTH_COOKIE_NAME" default:"token"`
	FrontendURL    string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`

	// Уведомления в реальном времени
	EnableRealtimeNotifications bool          `envconfig:"ENABLE_REALTIME_NOTIFICATIONS" default:"false"`
	RabbitMQURL                 string        `envconfig:"RABBITMQ_URL" default:"amqp://localhost:5672"`
	ConsumerConcurrency         int           `envconfig:"CONSUMER_CONCURRENCY" default:"10"`
	ConsumerRetryDelay          time.Duration `envconfig:"CONSUMER_RETRY_DELAY" default:"5s"`
	PersistTimeout              time.Duration `envconfig:"PERSIST_TIMEOUT" default:"15s"`

	// Лимит на WebSocket handshake с одного IP.
	WSHandshakeRPS   float64 `envconfig:"WS_HANDSHAKE_RPS" default:"5"`
	WSHandshakeBurst int     `envconfig:"WS_HANDSHAKE_BURST" default:"10"`

	// Лимит запросов к REST API с одного IP за минуту. 0 отключает лимит.
	APIRateLimitPerMinute uint `envconfig:"API_RATE_LIMIT_PER_MINUTE" default:"120"`
}

// GetAllowedOrigins splits FrontendURL into a list of CORS origins.
func (c *Config) GetAllowedOrigins() []string {
	if c.FrontendURL == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.FrontendURL, " ", ""), ",")
}

// IsProduction сообщает, запущен ли сервис в production окружении.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if c.EnableRealtimeNotifications && c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required when ENABLE_REALTIME_NOTIFICATIONS=true")
	}
	if c.ConsumerConcurrency < 1 {
		return fmt.Errorf("CONSUMER_CONCURRENCY must be positive, got %d", c.ConsumerConcurrency)
	}
	return nil
}

// LoadConfig loads configuration from an optional .env file, environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	cfg.DatabaseURL = utils.EnvOrSecret(cfg.DatabaseURL, "database_url")
	cfg.JWTSecret = utils.EnvOrSecret(cfg.JWTSecret, "jwt_secret")
	cfg.RedisPassword = utils.EnvOrSecret(cfg.RedisPassword, "redis_password")
	cfg.InterServiceSecret = utils.EnvOrSecret(cfg.InterServiceSecret, "inter_service_secret")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
