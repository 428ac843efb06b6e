//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"finance-tracker/internal/testutil"
	"finance-tracker/shared/authutils"
	"finance-tracker/shared/database"
	"finance-tracker/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisTokenRepository(t *testing.T) {
	testutil.RequireDocker(t)
	ctx := context.Background()
	rdb := testutil.StartRedis(ctx, t)
	repo := database.NewRedisTokenRepository(rdb, zap.NewNop())

	require.NoError(t, repo.Ping(ctx))

	require.NoError(t, rdb.Set(ctx, "access_uuid:active-jti", "user-1", time.Minute).Err())

	exists, err := repo.AccessTokenExists(ctx, "active-jti")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.AccessTokenExists(ctx, "unknown-jti")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisTokenRepository_RevocationThroughVerifier(t *testing.T) {
	testutil.RequireDocker(t)
	ctx := context.Background()
	rdb := testutil.StartRedis(ctx, t)
	repo := database.NewRedisTokenRepository(rdb, zap.NewNop())

	const secret = "redis-test-secret"
	verifier, err := authutils.NewJWTVerifier(secret, repo, zap.NewNop())
	require.NoError(t, err)

	token, err := authutils.GenerateTestJWT("user-1", secret, time.Minute)
	require.NoError(t, err)

	claims := &models.Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	// Токен без записи в Redis считается отозванным.
	_, err = verifier.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	require.NoError(t, rdb.Set(ctx, "access_uuid:"+claims.ID, "user-1", time.Minute).Err())
	got, err := verifier.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)

	require.NoError(t, rdb.Del(ctx, "access_uuid:"+claims.ID).Err())
	_, err = verifier.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}
