package auth

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Blacklist — явный внедряемый коллаборатор вместо глобального
// in-memory списка: в тестах подменяется фейком.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type RedisBlacklist struct {
	rdb *goredis.Client
}

func NewRedisBlacklist(addr string) (*RedisBlacklist, error) {
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return &RedisBlacklist{rdb: rdb}, nil
}

func blacklistKey(jti string) string { return "blacklist:" + jti }

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // токен уже истёк, хранить нечего
	}
	return b.rdb.Set(ctx, blacklistKey(jti), "1", ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
