package app_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-drycleaning/internal/app"
	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/config"
	"github.com/noah-isme/backend-drycleaning/internal/health"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
	"github.com/noah-isme/backend-drycleaning/internal/quote"
	"github.com/noah-isme/backend-drycleaning/internal/ratelimit"
)

func build(t *testing.T, env map[string]string, opts app.Options) *app.Dependencies {
	t.Helper()
	base := map[string]string{"DATABASE_URL": "", "REDIS_URL": ""}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadForTests(base)
	require.NoError(t, err)
	deps, err := app.Build(context.Background(), cfg, zerolog.Nop(), opts)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	return deps
}

func priceOne(t *testing.T, deps *app.Dependencies, key string, discount pricing.DiscountType) pricing.Result {
	t.Helper()
	res, err := deps.Quotes.Calculate(context.Background(), quote.Request{
		Items:    []pricing.CalculationItemRequest{{PriceListItemID: catalog.PriceItemID(key), Quantity: 1}},
		Discount: pricing.DiscountSelector{Type: discount},
	})
	require.NoError(t, err)
	return res
}

func TestBuildInMemory(t *testing.T) {
	deps := build(t, nil, app.Options{})

	require.IsType(t, &catalog.MemoryStore{}, deps.Store)
	require.Nil(t, deps.DB)
	require.Nil(t, deps.Redis)
	require.IsType(t, ratelimit.FixedWindow{}, deps.Limiter)
	require.Nil(t, deps.Seeder().Locker)

	res := priceOne(t, deps, "coat", pricing.DiscountEvercard)
	require.EqualValues(t, 90000, res.Totals.Total)

	// default exclusions keep laundry at full price
	res = priceOne(t, deps, "laundry-kg", pricing.DiscountEvercard)
	require.EqualValues(t, 10000, res.Totals.Total)

	require.ErrorIs(t, deps.Backends().PingDB(context.Background(), time.Second), health.ErrNotConfigured)
}

func TestBuildWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	deps := build(t, map[string]string{"REDIS_URL": "redis://" + mr.Addr()}, app.Options{ApplicationName: "pricing-test"})

	require.NotNil(t, deps.Redis)
	require.IsType(t, ratelimit.SlidingWindow{}, deps.Limiter)
	require.NotNil(t, deps.Seeder().Locker)
	require.NotNil(t, deps.Seeder().Invalidator)

	priceOne(t, deps, "shirt", pricing.DiscountNone)
	require.True(t, mr.Exists("pricing:catalog:item:"+catalog.PriceItemID("shirt").String()))
	require.NoError(t, deps.Backends().PingRedis(context.Background(), time.Second))
}

func TestBuildLimiterStrategies(t *testing.T) {
	mr := miniredis.RunT(t)

	fixed := build(t, map[string]string{"REDIS_URL": "redis://" + mr.Addr(), "RATE_LIMIT_STRATEGY": "fixed"}, app.Options{})
	require.IsType(t, ratelimit.FixedWindow{}, fixed.Limiter)

	off := build(t, map[string]string{"RATE_LIMIT_STRATEGY": "off"}, app.Options{})
	require.Nil(t, off.Limiter)
}

func TestBuildForceMemoryIgnoresBackends(t *testing.T) {
	deps := build(t, map[string]string{
		"DATABASE_URL": "postgres://localhost:5432/pricing",
		"REDIS_URL":    "redis://localhost:6379/0",
	}, app.Options{ForceMemory: true})
	require.Nil(t, deps.DB)
	require.Nil(t, deps.Redis)
}

func TestBuildExclusionOverride(t *testing.T) {
	deps := build(t, map[string]string{"PRICING_DISCOUNT_EXCLUDED_CATEGORIES": "none"}, app.Options{})
	res := priceOne(t, deps, "laundry-kg", pricing.DiscountEvercard)
	require.EqualValues(t, 9000, res.Totals.Total)
}

func TestBuildRejectsBadDatabaseURL(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{"DATABASE_URL": "postgres://localhost:notaport/pricing", "REDIS_URL": ""})
	require.NoError(t, err)
	_, err = app.Build(context.Background(), cfg, zerolog.Nop(), app.Options{})
	require.Error(t, err)
}
