// Package app builds the dependency graph shared by the API server and pricectl.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/config"
	"github.com/noah-isme/backend-drycleaning/internal/health"
	"github.com/noah-isme/backend-drycleaning/internal/lock"
	"github.com/noah-isme/backend-drycleaning/internal/obs"
	"github.com/noah-isme/backend-drycleaning/internal/pricing"
	"github.com/noah-isme/backend-drycleaning/internal/quote"
	"github.com/noah-isme/backend-drycleaning/internal/ratelimit"
	"github.com/noah-isme/backend-drycleaning/internal/resilience"
)

// Options adjusts how Build wires optional infrastructure.
type Options struct {
	// ForceMemory ignores DATABASE_URL and REDIS_URL and prices against the built-in catalog.
	ForceMemory bool
	// ApplicationName is reported to Postgres as application_name.
	ApplicationName string
}

// Dependencies enumerates the services shared across entrypoints.
type Dependencies struct {
	Config    *config.Config
	Logger    zerolog.Logger
	DB        *pgxpool.Pool
	Redis     redis.UniversalClient
	Store     catalog.Store
	Writer    catalog.Writer
	Cached    *catalog.CachedStore
	Engine    *pricing.Engine
	Policy    *catalog.DiscountPolicy
	Quotes    *quote.Service
	Catalog   *catalog.Service
	Validator *validator.Validate
	Limiter   ratelimit.Limiter
	Locker    catalog.Locker

	closers []func()
}

// Build connects to the configured backends and constructs the pricing services.
// Without DATABASE_URL the built-in memory catalog is used; without REDIS_URL caching
// and distributed rate limiting are disabled.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger, opts Options) (_ *Dependencies, err error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	d := &Dependencies{Config: cfg, Logger: logger, Validator: quote.NewValidator()}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	var store interface {
		catalog.Store
		catalog.Writer
	}
	if cfg.UseDatabase() && !opts.ForceMemory {
		pool, err := connectDB(ctx, cfg.DatabaseURL, opts.ApplicationName)
		if err != nil {
			return nil, err
		}
		d.DB = pool
		d.closers = append(d.closers, pool.Close)
		store = catalog.NewPostgresStore(pool)
		logger.Info().Msg("catalog backed by postgres")
	} else {
		store = catalog.NewDefaultMemoryStore()
		logger.Info().Msg("catalog backed by built-in price list")
	}
	d.Store, d.Writer = store, store

	if cfg.UseRedis() && !opts.ForceMemory {
		client, err := connectRedis(ctx, cfg.RedisURL, cfg.Obs.EnablePrometheus, logger)
		if err != nil {
			return nil, err
		}
		d.Redis = client
		d.closers = append(d.closers, func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		})
		d.Locker = lock.Locker{Client: client}
	}

	// a nil interface keeps the cache disabled; a typed nil client would not
	breaker := resilience.NewBreaker(5, 0.5, cfg.CatalogCacheBreakerOpenFor).
		WithTarget("catalog_cache").
		WithLogger(logger)
	cache := catalog.NewCache(d.Redis, cfg.CatalogCacheTTL).WithBreaker(breaker)
	d.Cached = catalog.NewCachedStore(store, cache, logger)

	excluded := categories(cfg.DiscountExcludedCategories)
	d.Policy = catalog.NewDiscountPolicy(store, excluded)

	d.Engine, err = pricing.NewEngine(d.Cached, d.Cached, pricing.WithConcurrency(cfg.PricingConcurrency))
	if err != nil {
		return nil, fmt.Errorf("app: engine: %w", err)
	}
	d.Quotes, err = quote.NewService(quote.ServiceConfig{Engine: d.Engine, Policy: d.Policy, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("app: quote service: %w", err)
	}
	d.Catalog, err = catalog.NewService(catalog.ServiceConfig{Store: d.Cached, Excluded: excluded})
	if err != nil {
		return nil, fmt.Errorf("app: catalog service: %w", err)
	}

	d.Limiter, err = newLimiter(cfg, d.Redis)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Seeder returns a catalog seeder writing through the configured store. The seed lock
// and cache invalidation are only active when Redis is configured.
func (d *Dependencies) Seeder() catalog.Seeder {
	s := catalog.Seeder{Writer: d.Writer, Logger: d.Logger}
	if d.Locker != nil {
		s.Locker = d.Locker
	}
	if d.Redis != nil {
		s.Invalidator = d.Cached
	}
	return s
}

// Backends returns the readiness checker for the connected backends.
func (d *Dependencies) Backends() health.Backends {
	return health.Backends{DB: d.DB, Redis: d.Redis}
}

// Close releases connections in reverse order of acquisition.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func connectDB(ctx context.Context, url, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("app: parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if appName != "" {
		if poolConfig.ConnConfig.RuntimeParams == nil {
			poolConfig.ConnConfig.RuntimeParams = map[string]string{}
		}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = appName
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("app: connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: ping database: %w", err)
	}
	return pool, nil
}

func connectRedis(ctx context.Context, url string, metrics bool, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("app: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if metrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("app: ping redis: %w", err)
	}
	return client, nil
}

func newLimiter(cfg *config.Config, client redis.UniversalClient) (ratelimit.Limiter, error) {
	switch cfg.RateLimitStrategy {
	case config.RateLimitOff:
		return nil, nil
	case config.RateLimitSliding:
		if client != nil {
			return ratelimit.SlidingWindow{Client: client}, nil
		}
		// sliding windows need sorted sets; fall back to per-instance counters
		return ratelimit.NewMemoryFixedWindow(""), nil
	default:
		if client != nil {
			fixed, err := ratelimit.NewRedisFixedWindow(client, "")
			if err != nil {
				return nil, err
			}
			return fixed, nil
		}
		return ratelimit.NewMemoryFixedWindow(""), nil
	}
}

func categories(values []string) []pricing.Category {
	if values == nil {
		return nil
	}
	out := make([]pricing.Category, 0, len(values))
	for _, v := range values {
		out = append(out, pricing.Category(strings.ToUpper(strings.TrimSpace(v))))
	}
	return out
}
