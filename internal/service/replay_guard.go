package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReplayGuard remembers accepted codes for one OTP period. It changes the
// default behaviour, under which a code can be reused until its window ends,
// and is only wired when OTP_REPLAY_GUARD is enabled.
type RedisReplayGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReplayGuard(client *redis.Client, ttl time.Duration) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl}
}

func (g *RedisReplayGuard) Consume(ctx context.Context, identity string, code string) (bool, error) {
	return g.client.SetNX(ctx, g.key(identity, code), "1", g.ttl).Result()
}

func (g *RedisReplayGuard) Release(ctx context.Context, identity string, code string) error {
	return g.client.Del(ctx, g.key(identity, code)).Err()
}

func (g *RedisReplayGuard) key(identity string, code string) string {
	sum := sha256.Sum256([]byte(identity + ":" + code))
	return "otp:used:" + hex.EncodeToString(sum[:])
}
