package repository

import (
	"context"
	"snaketests_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const revokedKeyPrefix = "session:revoked:"

// SessionRepository 登出撤销表，Redis 未启用时所有操作为空
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

// Revoke 撤销记录只保留到令牌本身过期
func (r *SessionRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r.Redis == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return r.Redis.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err()
}

func (r *SessionRepository) IsRevoked(ctx context.Context, jti string) bool {
	if r.Redis == nil || jti == "" {
		return false
	}
	n, err := r.Redis.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		logger.Log.Warn("Failed to check session revocation", zap.String("jti", jti), zap.Error(err))
		return false
	}
	return n > 0
}
