package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig captures the connection parameters for the shared Redis cache.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	Timeout  time.Duration
}

const (
	defaultRedisTimeout       = 5 * time.Second
	availabilityProbeInterval = 5 * time.Second
)

// RedisStore implements Store on top of go-redis. It is shared by the catalog
// reader and the admin mutator, which coordinate purely through key names.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration

	mu       sync.Mutex
	healthy  bool
	lastPing time.Time
}

// NewRedisStore connects to Redis and verifies the connection with a ping so
// misconfiguration surfaces at service startup rather than on first request.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{
		client:   client,
		timeout:  cfg.Timeout,
		healthy:  true,
		lastPing: time.Now(),
	}, nil
}

// Get retrieves the value associated with a key. A redis.Nil reply is a plain miss.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		s.markUnhealthy()
		return nil, false, err
	}
	return value, true, nil
}

// Set stores a value with the supplied expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.markUnhealthy()
		return err
	}
	return nil
}

// Delete removes one or more keys, ignoring missing keys.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.markUnhealthy()
		return err
	}
	return nil
}

// IncrementWithTTL increments the supplied key and ensures the TTL is set to
// the requested window. It returns the current count and the remaining
// time-to-live.
func (s *RedisStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		s.markUnhealthy()
		return 0, 0, err
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			s.markUnhealthy()
			return 0, 0, err
		}
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		return count, window, nil
	}
	return count, ttl, nil
}

// Available reports recent reachability, re-probing at most once per interval.
func (s *RedisStore) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.lastPing) < availabilityProbeInterval {
		return s.healthy
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.healthy = s.client.Ping(ctx).Err() == nil
	s.lastPing = time.Now()
	return s.healthy
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) markUnhealthy() {
	s.mu.Lock()
	s.healthy = false
	s.lastPing = time.Now()
	s.mu.Unlock()
}
