package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Rate limit strategies accepted by RATE_LIMIT_STRATEGY.
const (
	RateLimitSliding = "sliding"
	RateLimitFixed   = "fixed"
	RateLimitOff     = "off"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	CatalogCacheTTL    time.Duration
	// CatalogCacheBreakerOpenFor is how long the cache is bypassed after Redis keeps failing.
	CatalogCacheBreakerOpenFor time.Duration
	PricingConcurrency         int
	// DiscountExcludedCategories overrides the default discount exclusions when non-nil.
	DiscountExcludedCategories []string

	HTTPReadTimeout       time.Duration
	HTTPWriteTimeout      time.Duration
	HTTPShutdownTimeout   time.Duration
	RequestBodyLimitBytes int64

	RateLimitStrategy string
	RateLimitMax      int
	RateLimitWindow   time.Duration

	Obs ObsConfig
}

// ObsConfig groups logging, metrics and tracing settings.
type ObsConfig struct {
	LogFormat            string
	LogLevel             string
	MetricsNamespace     string
	EnablePrometheus     bool
	EnableTracing        bool
	OTLPEndpoint         string
	TracingSamplingRatio float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		CatalogCacheTTL:            parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),
		CatalogCacheBreakerOpenFor: parseDuration(k.String("CATALOG_CACHE_BREAKER_OPEN_FOR"), "30s"),
		PricingConcurrency:         parseInt(k.String("PRICING_CONCURRENCY"), 1),
		DiscountExcludedCategories: parseCategoryList(k.String("PRICING_DISCOUNT_EXCLUDED_CATEGORIES"), k.Exists("PRICING_DISCOUNT_EXCLUDED_CATEGORIES")),

		HTTPReadTimeout:       parseDuration(k.String("HTTP_READ_TIMEOUT"), "10s"),
		HTTPWriteTimeout:      parseDuration(k.String("HTTP_WRITE_TIMEOUT"), "15s"),
		HTTPShutdownTimeout:   parseDuration(k.String("HTTP_SHUTDOWN_TIMEOUT"), "10s"),
		RequestBodyLimitBytes: int64(parseInt(k.String("REQUEST_BODY_LIMIT_BYTES"), 1<<20)),

		RateLimitStrategy: strings.ToLower(valueOrDefault(k.String("RATE_LIMIT_STRATEGY"), RateLimitSliding)),
		RateLimitMax:      parseInt(k.String("RATE_LIMIT_MAX"), 120),
		RateLimitWindow:   parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),

		Obs: ObsConfig{
			LogFormat:            valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:             valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace:     valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "drycleaning"),
			EnablePrometheus:     parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			EnableTracing:        parseBool(k.String("OBS_ENABLE_TRACING"), false),
			OTLPEndpoint:         strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			TracingSamplingRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RateLimitStrategy {
	case RateLimitSliding, RateLimitFixed, RateLimitOff:
	default:
		return fmt.Errorf("RATE_LIMIT_STRATEGY must be one of sliding, fixed, off: got %q", c.RateLimitStrategy)
	}
	if c.PricingConcurrency < 1 {
		return errors.New("PRICING_CONCURRENCY must be at least 1")
	}
	if c.RequestBodyLimitBytes <= 0 {
		return errors.New("REQUEST_BODY_LIMIT_BYTES must be positive")
	}
	if c.RateLimitStrategy != RateLimitOff && (c.RateLimitMax <= 0 || c.RateLimitWindow <= 0) {
		return errors.New("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if c.Obs.TracingSamplingRatio < 0 || c.Obs.TracingSamplingRatio > 1 {
		return errors.New("OBS_TRACING_SAMPLING_RATIO must be within [0,1]")
	}
	return nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// UseDatabase reports whether the Postgres catalog should be used instead of the built-in one.
func (c *Config) UseDatabase() bool { return c.DatabaseURL != "" }

// UseRedis reports whether a Redis client should be created.
func (c *Config) UseRedis() bool { return c.RedisURL != "" }

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseCategoryList returns nil when the key is absent. A present key with the value
// "none" (or blank) yields an empty, non-nil list.
func parseCategoryList(value string, present bool) []string {
	if !present {
		return nil
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return []string{}
	}
	parts := splitAndTrim(trimmed)
	for i, p := range parts {
		parts[i] = strings.ToUpper(p)
	}
	return parts
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return parsed
	}
	return fallback
}

func parseFloat(value string, fallback float64) float64 {
	if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return parsed
	}
	return fallback
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
// An empty value unsets the variable for the duration of the load.
func LoadForTests(env map[string]string) (*Config, error) {
	type saved struct {
		value string
		set   bool
	}
	original := make(map[string]saved, len(env))
	for key, value := range env {
		v, ok := os.LookupEnv(key)
		original[key] = saved{value: v, set: ok}
		if err := setEnvVar(key, value); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()

	var errs []string
	for key, prev := range original {
		var restoreErr error
		if prev.set {
			restoreErr = os.Setenv(key, prev.value)
		} else {
			restoreErr = os.Unsetenv(key)
		}
		if restoreErr != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, restoreErr))
		}
	}
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}
