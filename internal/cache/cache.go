// Package cache memoizes provider responses in Redis so repeated searches
// inside the TTL window do not spend provider quota.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobsearch/internal/model"
)

const keyPrefix = "jobsearch"

// Store is the subset of a key-value store the cache needs. A Get miss
// returns ErrMiss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ErrMiss is returned by Store.Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// RedisStore adapts a go-redis client to Store.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// NewRedisClient parses redisURL, connects and pings.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// CachedFetcher wraps a JobFetcher and serves non-empty results from the
// store. Store failures degrade to a direct fetch.
type CachedFetcher struct {
	inner  model.JobFetcher
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedFetcher creates a caching decorator around inner.
func NewCachedFetcher(inner model.JobFetcher, store Store, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{inner: inner, store: store, ttl: ttl, logger: logger}
}

// Name delegates to the wrapped fetcher.
func (c *CachedFetcher) Name() string { return c.inner.Name() }

// FetchJobs returns cached jobs for q when present, otherwise fetches and
// caches a non-empty result.
func (c *CachedFetcher) FetchJobs(ctx context.Context, q model.SearchQuery) ([]model.Job, error) {
	key := Key(c.inner.Name(), q)

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var jobs []model.Job
		jerr := json.Unmarshal(data, &jobs)
		if jerr == nil {
			c.logger.Debug("cache hit", "provider", c.inner.Name(), "jobs", len(jobs))
			return jobs, nil
		}
		c.logger.Warn("discarding corrupt cache entry", "provider", c.inner.Name(), "error", jerr)
	case !errors.Is(err, ErrMiss):
		c.logger.Warn("cache read failed", "provider", c.inner.Name(), "error", err)
	}

	jobs, err := c.inner.FetchJobs(ctx, q)
	if err != nil || len(jobs) == 0 {
		return jobs, err
	}

	if data, err := json.Marshal(jobs); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache write failed", "provider", c.inner.Name(), "error", err)
		}
	}
	return jobs, nil
}

// Key derives the cache key for one provider query.
func Key(provider string, q model.SearchQuery) string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(q.Text)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(q.Location)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.ToLower(strings.Join(q.Skills, ","))))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, provider, hex.EncodeToString(h.Sum(nil)))
}
