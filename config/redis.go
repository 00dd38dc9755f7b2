package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ConnectRedis establishes connection to Redis. It returns nil when Redis is
// unreachable; OTP send throttling and federated sessions are then disabled.
func ConnectRedis(ctx context.Context, cfg Config, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis connection failed, OTP throttling and federated sessions disabled",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))
	return client
}
