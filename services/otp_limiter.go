// services/otp_limiter.go
package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/salus-app/salus_backend/apierror"
)

const (
	otpSendKeyPrefix = "otp:sends:"
	otpSendWindow    = time.Hour
)

// OtpSendLimiter caps how many codes a single contact can be sent per window.
// A nil limiter, or one without Redis, allows everything.
type OtpSendLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	logger *zap.Logger
}

func NewOtpSendLimiter(rdb *redis.Client, limit int, logger *zap.Logger) *OtpSendLimiter {
	return &OtpSendLimiter{rdb: rdb, limit: limit, window: otpSendWindow, logger: logger}
}

// Allow counts one send for contact and rejects it once the limit is passed.
// Redis failures are logged and let the send through.
func (l *OtpSendLimiter) Allow(ctx context.Context, contact string) error {
	if l == nil || l.rdb == nil || l.limit <= 0 {
		return nil
	}
	key := otpSendKeyPrefix + strings.ToLower(contact)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("otp send limiter unavailable", zap.Error(err))
		return nil
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Warn("otp send limiter expire failed", zap.String("key", key), zap.Error(err))
		}
	}

	if count > int64(l.limit) {
		return apierror.TooManyRequests("Too many OTP requests, please try again later")
	}
	return nil
}
