package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps slots as Redis string keys named
// "<prefix>:<namespace>:<slot>". The namespace identifies one client (for
// example a device or browser id) so several clients can share one Redis.
type RedisStorage struct {
	redis     redis.UniversalClient
	prefix    string
	namespace string
	ttl       time.Duration
}

// NewRedisStorage returns a storage over client. A zero ttl keeps slots
// until they are deleted.
func NewRedisStorage(client redis.UniversalClient, prefix, namespace string, ttl time.Duration) *RedisStorage {
	if prefix == "" {
		prefix = "gg"
	}
	if namespace == "" {
		namespace = "0"
	}
	return &RedisStorage{
		redis:     client,
		prefix:    prefix,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (s *RedisStorage) key(slot string) string {
	return s.prefix + ":" + s.namespace + ":" + slot
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.redis.Set(ctx, s.key(key), value, s.ttl).Err()
}

// SetMany writes every slot inside one MULTI/EXEC transaction.
func (s *RedisStorage) SetMany(ctx context.Context, values map[string]string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.redis.Del(ctx, full...).Err()
}
