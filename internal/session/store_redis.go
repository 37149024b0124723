package session

import (
	"context"
	"fmt"

	"clubhub/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "clubhub"

// RedisStore keeps the pair in a single hash, clubhub:session:<profile>.
type RedisStore struct {
	rdb redis.UniversalClient
	key string
}

func NewRedisStore(rdb redis.UniversalClient, profile string) *RedisStore {
	return &RedisStore{rdb: rdb, key: utils.Namespaced(redisKeyPrefix, "session", profile)}
}

func (s *RedisStore) Key() string { return s.key }

func (s *RedisStore) Save(ctx context.Context, p Pair) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, KeyAccessToken, p.Access, KeyRefreshToken, p.Refresh)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: redis save: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (Pair, bool, error) {
	m, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Pair{}, false, fmt.Errorf("session: redis load: %w", err)
	}
	p := Pair{Access: m[KeyAccessToken], Refresh: m[KeyRefreshToken]}
	if !p.complete() {
		return Pair{}, false, nil
	}
	return p, true, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("session: redis clear: %w", err)
	}
	return nil
}
