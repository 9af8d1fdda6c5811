package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-drycleaning/internal/obs"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
	"github.com/noah-isme/backend-drycleaning/internal/resilience"
)

const cacheKeyPrefix = "pricing:catalog:"

// Cache wraps Redis helpers for JSON payloads.
type Cache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *resilience.Breaker
}

// NewCache constructs a cache helper. A nil client yields a cache that always misses.
func NewCache(client redis.UniversalClient, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// WithBreaker routes Redis calls through b. While b is open every call returns
// resilience.ErrOpenCircuit without touching Redis.
func (c *Cache) WithBreaker(b *resilience.Breaker) *Cache {
	c.breaker = b
	return c
}

func (c *Cache) do(ctx context.Context, fn func(context.Context) error) error {
	return c.breaker.Execute(ctx, fn, isRedisFailure)
}

func isRedisFailure(err error) bool {
	return !errors.Is(err, redis.Nil)
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// GetJSON unmarshals a cached JSON payload into dst. It reports whether the key existed.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if !c.enabled() || key == "" {
		return false, nil
	}
	var data []byte
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.client.Get(ctx, key).Bytes()
		return err
	})
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON serialises v as JSON and stores it with the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	if !c.enabled() || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, key, data, c.ttl).Err()
	})
}

// Delete removes keys from the cache.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.enabled() || len(keys) == 0 {
		return nil
	}
	return c.do(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, keys...).Err()
	})
}

func itemKey(id uuid.UUID) string { return cacheKeyPrefix + "item:" + id.String() }

func modifierKey(code string) string { return cacheKeyPrefix + "modifier:" + code }

// CachedStore serves price list and modifier lookups from Redis before falling back to
// the wrapped store. Cache failures are logged and never fail a lookup.
type CachedStore struct {
	Store
	cache  *Cache
	logger zerolog.Logger
}

// NewCachedStore decorates store with cache.
func NewCachedStore(store Store, cache *Cache, logger zerolog.Logger) *CachedStore {
	return &CachedStore{Store: store, cache: cache, logger: logger}
}

// GetByID implements pricing.PriceListLookup.
func (s *CachedStore) GetByID(ctx context.Context, id uuid.UUID) (pricing.PriceListItemView, error) {
	key := itemKey(id)
	var item pricing.PriceListItemView
	if s.read(ctx, "item", key, &item) {
		return item, nil
	}
	item, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return pricing.PriceListItemView{}, err
	}
	s.write(ctx, key, item)
	return item, nil
}

// GetByCode implements pricing.ModifierCatalog.
func (s *CachedStore) GetByCode(ctx context.Context, code string) (pricing.ModifierDefinition, error) {
	key := modifierKey(code)
	var def pricing.ModifierDefinition
	if s.read(ctx, "modifier", key, &def) {
		return def, nil
	}
	def, err := s.Store.GetByCode(ctx, code)
	if err != nil {
		return pricing.ModifierDefinition{}, err
	}
	s.write(ctx, key, def)
	return def, nil
}

// InvalidateItem drops a cached price list entry.
func (s *CachedStore) InvalidateItem(ctx context.Context, id uuid.UUID) error {
	return s.cache.Delete(ctx, itemKey(id))
}

// InvalidateModifier drops a cached modifier definition.
func (s *CachedStore) InvalidateModifier(ctx context.Context, code string) error {
	return s.cache.Delete(ctx, modifierKey(code))
}

func (s *CachedStore) read(ctx context.Context, kind, key string, dst any) bool {
	if !s.cache.enabled() {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dst)
	switch {
	case errors.Is(err, resilience.ErrOpenCircuit):
		obs.ObserveCatalogCache(kind, "bypass")
		return false
	case err != nil:
		obs.ObserveCatalogCache(kind, "error")
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	case hit:
		obs.ObserveCatalogCache(kind, "hit")
		return true
	default:
		obs.ObserveCatalogCache(kind, "miss")
		return false
	}
}

func (s *CachedStore) write(ctx context.Context, key string, v any) {
	if err := s.cache.SetJSON(ctx, key, v); err != nil && !errors.Is(err, resilience.ErrOpenCircuit) {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}
