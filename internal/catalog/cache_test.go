package catalog_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/obs"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
	"github.com/noah-isme/backend-drycleaning/internal/resilience"
)

type countingStore struct {
	catalog.Store
	itemCalls     int
	modifierCalls int
}

func (s *countingStore) GetByID(ctx context.Context, id uuid.UUID) (pricing.PriceListItemView, error) {
	s.itemCalls++
	return s.Store.GetByID(ctx, id)
}

func (s *countingStore) GetByCode(ctx context.Context, code string) (pricing.ModifierDefinition, error) {
	s.modifierCalls++
	return s.Store.GetByCode(ctx, code)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedStoreServesRepeatLookupsFromRedis(t *testing.T) {
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
	mr, client := newRedis(t)
	inner := &countingStore{Store: catalog.NewDefaultMemoryStore()}
	store := catalog.NewCachedStore(inner, catalog.NewCache(client, time.Minute), zerolog.Nop())
	ctx := context.Background()
	coat := catalog.PriceItemID("coat")

	hitsBefore := testutil.ToFloat64(obs.CatalogCacheTotal.WithLabelValues("item", "hit"))

	first, err := store.GetByID(ctx, coat)
	require.NoError(t, err)
	second, err := store.GetByID(ctx, coat)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.itemCalls)
	require.Equal(t, hitsBefore+1, testutil.ToFloat64(obs.CatalogCacheTotal.WithLabelValues("item", "hit")))

	_, err = store.GetByCode(ctx, "SILK_MATERIAL")
	require.NoError(t, err)
	def, err := store.GetByCode(ctx, "SILK_MATERIAL")
	require.NoError(t, err)
	require.Equal(t, 1, inner.modifierCalls)
	require.Equal(t, []pricing.Category{pricing.CategoryClothing, pricing.CategoryLaundry, pricing.CategoryIroning, pricing.CategoryDyeing}, def.CategoryRestrictions)

	mr.FastForward(2 * time.Minute)
	_, err = store.GetByID(ctx, coat)
	require.NoError(t, err)
	require.Equal(t, 2, inner.itemCalls)
}

func TestCachedStoreDoesNotCacheMisses(t *testing.T) {
	_, client := newRedis(t)
	inner := &countingStore{Store: catalog.NewDefaultMemoryStore()}
	store := catalog.NewCachedStore(inner, catalog.NewCache(client, time.Minute), zerolog.Nop())

	for i := 0; i < 2; i++ {
		_, err := store.GetByCode(context.Background(), "UNKNOWN")
		require.ErrorIs(t, err, pricing.ErrModifierNotFound)
	}
	require.Equal(t, 2, inner.modifierCalls)
}

func TestCachedStoreDegradesWhenRedisIsDown(t *testing.T) {
	mr, client := newRedis(t)
	inner := &countingStore{Store: catalog.NewDefaultMemoryStore()}
	store := catalog.NewCachedStore(inner, catalog.NewCache(client, time.Minute), zerolog.Nop())
	mr.Close()

	item, err := store.GetByID(context.Background(), catalog.PriceItemID("shirt"))
	require.NoError(t, err)
	require.Equal(t, "Сорочка", item.Name)
	require.Equal(t, 1, inner.itemCalls)
}

func TestCachedStoreBypassesRedisWhenBreakerOpens(t *testing.T) {
	obs.MustRegisterDomainMetrics("test", prometheus.NewRegistry())
	mr, client := newRedis(t)
	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	cache := catalog.NewCache(client, time.Minute).WithBreaker(breaker)
	inner := &countingStore{Store: catalog.NewDefaultMemoryStore()}
	store := catalog.NewCachedStore(inner, cache, zerolog.Nop())
	ctx := context.Background()
	mr.Close()

	bypassBefore := testutil.ToFloat64(obs.CatalogCacheTotal.WithLabelValues("item", "bypass"))

	_, err := store.GetByID(ctx, catalog.PriceItemID("coat"))
	require.NoError(t, err)
	require.Equal(t, resilience.Open, breaker.State())

	_, err = store.GetByID(ctx, catalog.PriceItemID("coat"))
	require.NoError(t, err)
	require.Equal(t, 2, inner.itemCalls)
	require.Equal(t, bypassBefore+1, testutil.ToFloat64(obs.CatalogCacheTotal.WithLabelValues("item", "bypass")))
	require.ErrorIs(t, cache.Delete(ctx, "k"), resilience.ErrOpenCircuit)
}

func TestCacheMissDoesNotTripBreaker(t *testing.T) {
	_, client := newRedis(t)
	breaker := resilience.NewBreaker(1, 0.5, time.Minute)
	cache := catalog.NewCache(client, time.Minute).WithBreaker(breaker)

	var v map[string]any
	hit, err := cache.GetJSON(context.Background(), "absent", &v)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestCachedStoreInvalidate(t *testing.T) {
	_, client := newRedis(t)
	inner := &countingStore{Store: catalog.NewDefaultMemoryStore()}
	store := catalog.NewCachedStore(inner, catalog.NewCache(client, time.Minute), zerolog.Nop())
	ctx := context.Background()

	_, err := store.GetByCode(ctx, "KIDS_ITEMS")
	require.NoError(t, err)
	require.NoError(t, store.InvalidateModifier(ctx, "KIDS_ITEMS"))
	_, err = store.GetByCode(ctx, "KIDS_ITEMS")
	require.NoError(t, err)
	require.Equal(t, 2, inner.modifierCalls)
}

func TestCacheWithoutClientAlwaysMisses(t *testing.T) {
	inner := &countingStore{Store: catalog.NewDefaultMemoryStore()}
	store := catalog.NewCachedStore(inner, catalog.NewCache(nil, time.Minute), zerolog.Nop())
	for i := 0; i < 2; i++ {
		_, err := store.GetByID(context.Background(), catalog.PriceItemID("coat"))
		require.NoError(t, err)
	}
	require.Equal(t, 2, inner.itemCalls)
}
