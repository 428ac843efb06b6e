//go:build integration

// Package testutil поднимает тестовые контейнеры для интеграционных тестов.
package testutil

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"finance-tracker/internal/repository/migrations"
	"finance-tracker/pkg/migration"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RequireDocker пропускает тест в -short режиме и падает, если Docker недоступен.
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Fatalf("Docker client init error: %v. Ensure Docker is running and accessible.", err)
	}
	defer cli.Close()
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker daemon is not running or accessible: %v", err)
	}
}

// StartPostgres запускает PostgreSQL, применяет миграции и возвращает пул.
func StartPostgres(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(t, err, "Failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get postgres connection string")

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err, "Failed to connect to test postgres")
	t.Cleanup(pool.Close)

	migrator := migration.NewMigrator(migration.Config{MigrationsFS: migrations.FS}, pool, zap.NewNop())
	require.NoError(t, migrator.Up(ctx), "Failed to run migrations")
	return pool
}

// RabbitMQ - запущенный тестовый брокер.
type RabbitMQ struct {
	URL       string
	container *rabbitmq.RabbitMQContainer
}

// StartRabbitMQ запускает RabbitMQ и возвращает брокер с AMQP URL.
func StartRabbitMQ(ctx context.Context, t *testing.T) *RabbitMQ {
	t.Helper()
	container, err := rabbitmq.Run(ctx, "rabbitmq:3.13-management-alpine")
	require.NoError(t, err, "Failed to start rabbitmq container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate rabbitmq container: %v", err)
		}
	})

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err, "Failed to get amqp url")
	return &RabbitMQ{URL: url, container: container}
}

// CloseAllConnections обрывает все клиентские соединения на стороне брокера.
func (r *RabbitMQ) CloseAllConnections(ctx context.Context, t *testing.T) {
	t.Helper()
	code, out, err := r.container.Exec(ctx, []string{"rabbitmqctl", "close_all_connections", "integration test"})
	require.NoError(t, err, "Failed to exec rabbitmqctl")
	if code != 0 {
		output, _ := io.ReadAll(out)
		t.Fatalf("rabbitmqctl close_all_connections exited with %d: %s", code, output)
	}
}

// StartRedis запускает Redis и возвращает подключенный клиент.
func StartRedis(ctx context.Context, t *testing.T) *redis.Client {
	t.Helper()
	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "Failed to start redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, rdb.Ping(ctx).Err(), "Failed to connect to test redis")
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
