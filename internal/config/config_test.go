package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/finance")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "/api/v1.0.0", cfg.APIBasePath)
	assert.Equal(t, "token", cfg.AuthCookieName)
	assert.False(t, cfg.EnableRealtimeNotifications)
	assert.Equal(t, "amqp://localhost:5672", cfg.RabbitMQURL)
	assert.Equal(t, 10, cfg.ConsumerConcurrency)
	assert.Equal(t, 5*time.Second, cfg.ConsumerRetryDelay)
	assert.Equal(t, 15*time.Second, cfg.PersistTimeout)
	assert.Equal(t, uint(120), cfg.APIRateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.GetAllowedOrigins())
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "DATABASE_URL=postgres://file/finance\nJWT_SECRET=file-secret\nENABLE_REALTIME_NOTIFICATIONS=true\nCONSUMER_CONCURRENCY=3\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv не перезаписывает уже заданные переменные.
	t.Setenv("JWT_SECRET", "env-secret")
	for _, key := range []string{"DATABASE_URL", "ENABLE_REALTIME_NOTIFICATIONS", "CONSUMER_CONCURRENCY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/finance", cfg.DatabaseURL)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.True(t, cfg.EnableRealtimeNotifications)
	assert.Equal(t, 3, cfg.ConsumerConcurrency)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DatabaseURL:         "postgres://localhost/finance",
			JWTSecret:           "secret",
			RabbitMQURL:         "amqp://localhost:5672",
			ConsumerConcurrency: 1,
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing required", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseURL = ""
		cfg.JWTSecret = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL, JWT_SECRET")
	})

	t.Run("realtime without broker url", func(t *testing.T) {
		cfg := valid()
		cfg.EnableRealtimeNotifications = true
		cfg.RabbitMQURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("realtime disabled ignores broker url", func(t *testing.T) {
		cfg := valid()
		cfg.RabbitMQURL = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad concurrency", func(t *testing.T) {
		cfg := valid()
		cfg.ConsumerConcurrency = 0
		assert.Error(t, cfg.Validate())
	})
}
