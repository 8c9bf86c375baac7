package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "credential:"

// RedisRepository caches sealed credentials in Redis for the lifetime of a session.
type RedisRepository struct {
	rdb    *redis.Client
	sealer *Sealer
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisRepository(rdb *redis.Client, sealer *Sealer, ttl time.Duration, logger *zap.Logger) *RedisRepository {
	return &RedisRepository{
		rdb:    rdb,
		sealer: sealer,
		ttl:    ttl,
		logger: logger,
	}
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisRepository) Get(ctx context.Context, sessionID string) (Credential, bool, error) {
	sealed, err := r.rdb.Get(ctx, redisKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("redis get credential: %w", err)
	}

	plain, err := r.sealer.Open(sessionID, sealed)
	if err != nil {
		// Unreadable entries (rotated secret, tampering) behave as absent.
		r.logger.Warn("Discarding unreadable credential",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		_ = r.rdb.Del(ctx, redisKey(sessionID)).Err()
		return Credential{}, false, nil
	}

	var cred Credential
	if err := json.Unmarshal(plain, &cred); err != nil {
		return Credential{}, false, fmt.Errorf("decode credential: %w", err)
	}
	return cred, true, nil
}

func (r *RedisRepository) Put(ctx context.Context, sessionID string, cred Credential) error {
	plain, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	sealed, err := r.sealer.Seal(sessionID, plain)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, redisKey(sessionID), sealed, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete credential: %w", err)
	}
	return nil
}
