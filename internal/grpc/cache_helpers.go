package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
)

// addTTLJitter spreads expiry by up to ±10% of ttl.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	span := int64(ttl / 5)
	if span <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(span)-span/2)
}

// evictionLog versions cache keys so values fetched before an eviction are
// never written back after it. A nil log disables the check.
type evictionLog struct {
	mu       sync.Mutex
	versions map[string]uint64
}

func newEvictionLog() *evictionLog {
	return &evictionLog{versions: make(map[string]uint64)}
}

func (l *evictionLog) version(key string) uint64 {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.versions[key]
}

// evict bumps the version of each key and deletes them. The lock is held
// across the delete so a concurrent store sees either the old version before
// the delete or the new one.
func (l *evictionLog) evict(ctx context.Context, c Cacher, keys ...string) error {
	if l == nil {
		return c.Delete(ctx, keys...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.versions[k]++
	}
	return c.Delete(ctx, keys...)
}

// set writes value only if key is still at version.
func (l *evictionLog) set(ctx context.Context, c Cacher, key string, version uint64, value any, ttl time.Duration) (bool, error) {
	if l == nil {
		return true, c.Set(ctx, key, value, ttl)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.versions[key] != version {
		return false, nil
	}
	return true, c.Set(ctx, key, value, ttl)
}

func storeInBackground[T any](c Cacher, evictions *evictionLog, key string, version uint64, ttl time.Duration, logger *zap.Logger, value T) {
	go func() {
		setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
		defer cancel()

		ttlWithJitter := addTTLJitter(ttl)
		stored, err := evictions.set(setCtx, c, key, version, value, ttlWithJitter)
		if !stored {
			logger.Debug("key evicted while fetching, not caching", zap.String("key", key))
			return
		}
		if err != nil {
			logger.Warn("failed to populate cache", zap.String("key", key), zap.Error(err))
			return
		}
		logger.Debug("cache populated", zap.String("key", key), zap.Duration("ttl", ttlWithJitter))
	}()
}

// refreshAhead recomputes a hit in the background so hot keys rarely expire.
// Concurrent refreshes of one key collapse into a single fetch.
func refreshAhead[T any](c Cacher, sf *singleflight.Group, evictions *evictionLog, key string, ttl time.Duration, logger *zap.Logger, fn FetchFunc[T]) {
	version := evictions.version(key)
	go func() {
		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			storeInBackground(c, evictions, key, version, ttl, logger, value)
			return nil, nil
		})
	}()
}

// FindAndCache implements read-through caching with singleflight and
// refresh-ahead. Cache errors other than a miss are logged and treated as a
// miss so a cache outage never fails a request. Values fetched before an
// eviction recorded in evictions are returned but not cached.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	evictions *evictionLog,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	version := evictions.version(key)
	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshAhead(c, sf, evictions, key, ttl, logger, fn)
		return cached, nil
	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))
	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		storeInBackground(c, evictions, key, version, ttl, logger, value)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
