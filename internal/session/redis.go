package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ashureev/bloomify/internal/domain"
)

const redisKeyPrefix = "bloomify:session:"

// RedisStore keeps each session as a Redis list of JSON turns. Redis key
// expiry replaces the sweeper.
type RedisStore struct {
	rdb    *goredis.Client
	opts   Options
	window int64
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, opts Options) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	opts = opts.withDefaults()
	return &RedisStore{
		rdb:    rdb,
		opts:   opts,
		window: int64(evenCapacity(opts.HistoryTurns)),
	}, nil
}

func redisKey(key domain.SessionKey) string {
	return redisKeyPrefix + key.String()
}

// Get returns the live turns for key.
func (s *RedisStore) Get(ctx context.Context, key domain.SessionKey) (*domain.Conversation, error) {
	raw, err := s.rdb.LRange(ctx, redisKey(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	conv := &domain.Conversation{Key: key, Turns: make([]domain.Turn, 0, len(raw))}
	for _, item := range raw {
		var t domain.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		conv.Turns = append(conv.Turns, t)
	}
	return conv, nil
}

// Append pushes turns, trims to the window and refreshes the expiry in one
// transaction.
func (s *RedisStore) Append(ctx context.Context, key domain.SessionKey, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]any, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode turn: %w", err)
		}
		values = append(values, b)
	}

	k := redisKey(key)
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.RPush(ctx, k, values...)
		pipe.LTrim(ctx, k, -s.window, -1)
		pipe.Expire(ctx, k, s.opts.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append: %w", err)
	}
	return nil
}

// Delete removes one session.
func (s *RedisStore) Delete(ctx context.Context, key domain.SessionKey) error {
	if err := s.rdb.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeleteCaller removes every session owned by callerID.
func (s *RedisStore) DeleteCaller(ctx context.Context, callerID string) (int, error) {
	deleted := 0
	for _, endpoint := range domain.Endpoints {
		pattern := redisKeyPrefix + string(endpoint) + "|" + callerID + "|*"
		keys, err := s.scan(ctx, pattern)
		if err != nil {
			return deleted, err
		}
		if len(keys) == 0 {
			continue
		}
		n, err := s.rdb.Del(ctx, keys...).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}

// Len counts session keys.
func (s *RedisStore) Len(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx, redisKeyPrefix+"*")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Sweep is a no-op: Redis expires idle sessions itself.
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

var _ Store = (*RedisStore)(nil)
