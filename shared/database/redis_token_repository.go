package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// accessKeyPrefix совпадает с ключами, которые пишет сервис аутентификации при логине.
const accessKeyPrefix = "access_uuid:"

// RedisTokenRepository - read-only доступ к активным access-токенам в Redis.
// Выдача и удаление токенов остаются за сервисом аутентификации.
type RedisTokenRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisTokenRepository creates a new Redis-backed token lookup.
func NewRedisTokenRepository(client *redis.Client, logger *zap.Logger) *RedisTokenRepository {
	return &RedisTokenRepository{
		client: client,
		logger: logger.Named("RedisTokenRepo"),
	}
}

// AccessTokenExists reports whether the access token identified by its JTI is still active.
func (r *RedisTokenRepository) AccessTokenExists(ctx context.Context, accessUUID string) (bool, error) {
	n, err := r.client.Exists(ctx, accessKeyPrefix+accessUUID).Result()
	if err != nil {
		r.logger.Error("Failed to check access token in redis", zap.Error(err), zap.String("accessUUID", accessUUID))
		return false, fmt.Errorf("failed to check access token in redis: %w", err)
	}
	return n > 0, nil
}

// Ping проверяет доступность Redis (используется в /health).
func (r *RedisTokenRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
