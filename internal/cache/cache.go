package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store tracks a monotonic version per cache key and fans out invalidation
// signals. Values live in Redis tagged with the version they were computed
// at; a version bump makes every previously stored value unreadable, so the
// next read falls through to a fresh fetch.
type Store struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration

	mu       sync.Mutex
	versions map[string]uint64
	subs     map[string][]chan struct{}
}

// NewStore builds a cache store. The Redis client is optional; with a nil
// client the store still provides versioning and signaling, only the value
// cache is disabled.
func NewStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		client:   client,
		logger:   logger,
		ttl:      ttl,
		versions: make(map[string]uint64),
		subs:     make(map[string][]chan struct{}),
	}
}

// Invalidate marks every given key stale and signals subscribers. It is
// non-fallible bookkeeping: the version bump always takes effect before
// Invalidate returns, and Redis cleanup errors are logged, never returned.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	s.mu.Lock()
	var signals []chan struct{}
	for _, key := range keys {
		s.versions[key]++
		signals = append(signals, s.subs[key]...)
	}
	s.mu.Unlock()

	for _, ch := range signals {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	if s.client != nil && len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			s.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
		}
	}
}

// Version returns the current version of a key. Never-invalidated keys are
// version zero.
func (s *Store) Version(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[key]
}

// Subscribe returns a channel that receives a signal whenever the key is
// invalidated, so a view can re-fetch. The channel is buffered; coalesced
// signals are fine because the consumer re-reads the latest state anyway.
func (s *Store) Subscribe(key string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[key] = append(s.subs[key], ch)
	s.mu.Unlock()
	return ch
}

// envelope stores a cached value together with the key version it was
// computed at.
type envelope struct {
	Version uint64          `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Fetch reads a cached value for key, falling through to load on a miss or
// a version mismatch. A read initiated after an invalidation can never see
// the pre-invalidation value: the stored envelope carries the old version.
// Cache transport errors are logged and degrade to a direct load.
func Fetch[T any](ctx context.Context, s *Store, key string, load func(context.Context) (T, error)) (T, error) {
	version := s.Version(key)

	if s.client != nil {
		raw, err := s.client.Get(ctx, key).Bytes()
		if err == nil {
			var env envelope
			if json.Unmarshal(raw, &env) == nil && env.Version == version {
				var value T
				if json.Unmarshal(env.Data, &value) == nil {
					return value, nil
				}
			}
		} else if err != redis.Nil {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if s.client != nil {
		if data, merr := json.Marshal(value); merr == nil {
			env, _ := json.Marshal(envelope{Version: version, Data: data})
			if serr := s.client.Set(ctx, key, env, s.ttl).Err(); serr != nil {
				s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(serr))
			}
		}
	}
	return value, nil
}
