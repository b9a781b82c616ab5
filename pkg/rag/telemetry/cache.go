package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"edu-assistant-be/internal/pkg/logger"
	"edu-assistant-be/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = time.Hour

// Cache is one tier of debug storage. Get reports a miss with ok=false and a nil error.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// MemoryCache is the process-local tier. Entries never expire.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a process-local cache whose entries never expire.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, 0)}
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.items.Set(key, value, gocache.NoExpiration)
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected cache value type %T", v)
	}
	return b, true, nil
}

// Store reads and writes debug info through the primary tier, switching to the fallback for any operation
// whose primary call errors. A primary miss is a miss.
type Store struct {
	primary  Cache
	fallback Cache
	ttl      time.Duration
	logger   logger.ILogger
	metrics  *metrics.RetrievalMetrics
}

// NewStore creates a debug info store. primary may be nil, in which case only the fallback is used.
func NewStore(primary Cache, fallback Cache, ttl time.Duration, log logger.ILogger, m *metrics.RetrievalMetrics) *Store {
	if fallback == nil {
		fallback = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{primary: primary, fallback: fallback, ttl: ttl, logger: log, metrics: m}
}

func (s *Store) Save(ctx context.Context, sessionID string, info *DebugInfo) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode debug info: %w", err)
	}
	key := Key(sessionID)

	if s.primary != nil {
		err := s.primary.Set(ctx, key, payload, s.ttl)
		if err == nil {
			s.metrics.CacheOp("primary", "set", "ok")
			return nil
		}
		s.metrics.CacheOp("primary", "set", "error")
		s.logger.Warn("TELEMETRY", "Primary cache write failed, using fallback", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	if err := s.fallback.Set(ctx, key, payload, s.ttl); err != nil {
		s.metrics.CacheOp("fallback", "set", "error")
		return err
	}
	s.metrics.CacheOp("fallback", "set", "ok")
	return nil
}

// Load returns nil without error when nothing is stored for the session.
func (s *Store) Load(ctx context.Context, sessionID string) (*DebugInfo, error) {
	key := Key(sessionID)

	var (
		raw []byte
		ok  bool
	)
	usedFallback := s.primary == nil
	if s.primary != nil {
		var err error
		raw, ok, err = s.primary.Get(ctx, key)
		if err != nil {
			s.metrics.CacheOp("primary", "get", "error")
			s.logger.Warn("TELEMETRY", "Primary cache read failed, using fallback", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			usedFallback = true
		}
	}

	tier := "primary"
	if usedFallback {
		tier = "fallback"
		var err error
		raw, ok, err = s.fallback.Get(ctx, key)
		if err != nil {
			s.metrics.CacheOp(tier, "get", "error")
			return nil, err
		}
	}

	if !ok {
		s.metrics.CacheOp(tier, "get", "miss")
		return nil, nil
	}
	s.metrics.CacheOp(tier, "get", "hit")

	var info DebugInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("failed to decode debug info: %w", err)
	}
	return &info, nil
}
