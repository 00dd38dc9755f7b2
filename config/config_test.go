package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://db:27017")
	t.Setenv("JWT_ACCESS_TOKEN_SECRET_KEY", "a")
	t.Setenv("JWT_REFRESH_TOKEN_SECRET_KEY", "r")
	t.Setenv("SESSION_SECRET", "s")
	for _, key := range []string{"PORT", "DB_NAME", "JWT_ACCESS_TOKEN_EXPIRY", "JWT_REFRESH_TOKEN_EXPIRY", "OTP_SEND_LIMIT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "salus", cfg.DBName)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 5, cfg.OTPSendLimit)
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGODB_URI", "mongodb://fallback:27017")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "900")
	t.Setenv("JWT_REFRESH_TOKEN_EXPIRY", "10d")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://salus.app, https://admin.salus.app,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://fallback:27017", cfg.MongoURI)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, []string{"https://salus.app", "https://admin.salus.app"}, cfg.CORSAllowedOrigins)
}

func TestValidateReportsEveryMissingKey(t *testing.T) {
	err := Config{AccessTokenExpiry: time.Minute, RefreshTokenExpiry: time.Hour}.Validate()
	require.Error(t, err)
	for _, key := range []string{"MONGO_URI", "JWT_ACCESS_TOKEN_SECRET_KEY", "JWT_REFRESH_TOKEN_SECRET_KEY", "SESSION_SECRET"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestMaskMongoURI(t *testing.T) {
	assert.NotContains(t, maskMongoURI("mongodb://admin:hunter2@db:27017/salus"), "hunter2")
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	rdb := ConnectRedis(context.Background(), Config{RedisAddr: addr}, zap.NewNop())
	require.NotNil(t, rdb)
	_ = rdb.Close()

	mr.Close()
	assert.Nil(t, ConnectRedis(context.Background(), Config{RedisAddr: addr}, zap.NewNop()))
}
