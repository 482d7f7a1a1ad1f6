// Package cache provides a Redis-backed lookup cache with an in-process
// fallback, used for venue coordinates resolved during weather
// enrichment. The worker runs fine without Redis; the cache then only
// lives for the process lifetime.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store is a two-level cache: a process-local map in front of an
// optional Redis backend.
type Store struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.RWMutex
	local map[string][]byte
}

// New connects to Redis and returns a Store. A connection failure
// returns a Store that works purely in-process, plus the error so the
// caller can log it.
func New(ctx context.Context, cfg Config) (*Store, error) {
	store := &Store{
		ttl:   24 * time.Hour,
		local: make(map[string][]byte),
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return store, fmt.Errorf("redis unavailable: %w", err)
	}

	store.client = client
	log.Info().Str("addr", cfg.Addr).Msg("Redis cache connected")
	return store, nil
}

// NewInProcess returns a Store with no Redis backend. Used in tests and
// when Redis is not configured.
func NewInProcess() *Store {
	return &Store{
		ttl:   24 * time.Hour,
		local: make(map[string][]byte),
	}
}

// Close releases the Redis connection if one exists.
func (s *Store) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
}

// Get unmarshals the cached value for key into out, reporting whether a
// value was found. Redis errors degrade to a miss.
func (s *Store) Get(ctx context.Context, key string, out interface{}) bool {
	s.mu.RLock()
	raw, ok := s.local[key]
	s.mu.RUnlock()

	if !ok && s.client != nil {
		data, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			raw, ok = data, true
			s.mu.Lock()
			s.local[key] = data
			s.mu.Unlock()
		} else if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("Redis get failed")
		}
	}

	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Corrupt cache entry dropped")
		s.mu.Lock()
		delete(s.local, key)
		s.mu.Unlock()
		return false
	}

	return true
}

// Set stores a value under key in both cache levels. Redis write
// failures are logged and ignored.
func (s *Store) Set(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to marshal cache value")
		return
	}

	s.mu.Lock()
	s.local[key] = raw
	s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("Redis set failed")
		}
	}
}
