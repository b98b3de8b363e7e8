// Package cache stores encoded outline results in Redis, keyed by the
// content hash of the uploaded PDF and the engine version.
package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

// Hash returns the hex BLAKE2b-256 digest of data.
func Hash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key is the Redis key of the result for a content hash under an engine
// version.
func Key(version, hash string) string {
	return fmt.Sprintf("outline:v%s:%s", version, hash)
}

type ResultStore struct {
	client  *redis.Client
	version string
	ttl     time.Duration
}

func NewResultStore(redisURL, version string, ttl time.Duration) (*ResultStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &ResultStore{client: c, version: version, ttl: ttl}, nil
}

func (s *ResultStore) Close() error { return s.client.Close() }

// Get returns the cached result for hash; ok is false on a miss.
func (s *ResultStore) Get(ctx context.Context, hash string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, Key(s.version, hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores data for hash. A zero TTL keeps it until evicted.
func (s *ResultStore) Set(ctx context.Context, hash string, data []byte) error {
	return s.client.Set(ctx, Key(s.version, hash), data, s.ttl).Err()
}

// Ping checks the Redis connection.
func (s *ResultStore) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }
