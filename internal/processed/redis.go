package processed

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "faxroute:processed"

// RedisSet implements Set on a Redis sorted set scored by insertion time,
// giving best-effort persistence of processed identifiers across restarts.
type RedisSet struct {
	rdb *redis.Client
}

// NewRedisSet creates a Redis-backed processed set and verifies the
// connection.
func NewRedisSet(url, password string) (*RedisSet, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisSet{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (s *RedisSet) Close() error {
	return s.rdb.Close()
}

// Contains reports whether id has been processed.
func (s *RedisSet) Contains(ctx context.Context, id string) (bool, error) {
	err := s.rdb.ZScore(ctx, redisKey, id).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("zscore failed: %w", err)
	}
	return true, nil
}

// Add records id as processed. ZAdd is atomic per member.
func (s *RedisSet) Add(ctx context.Context, id string) error {
	member := redis.Z{Score: float64(time.Now().Unix()), Member: id}
	if err := s.rdb.ZAddNX(ctx, redisKey, member).Err(); err != nil {
		return fmt.Errorf("zadd failed: %w", err)
	}
	return nil
}

// Size returns the number of tracked identifiers.
func (s *RedisSet) Size(ctx context.Context) (int, error) {
	n, err := s.rdb.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(n), nil
}

// PruneOlderThan removes identifiers added before cutoff.
func (s *RedisSet) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	max := fmt.Sprintf("(%d", cutoff.Unix())
	n, err := s.rdb.ZRemRangeByScore(ctx, redisKey, "-inf", max).Result()
	if err != nil {
		return 0, fmt.Errorf("zremrangebyscore failed: %w", err)
	}
	return int(n), nil
}
