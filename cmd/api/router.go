package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-drycleaning/internal/app"
	"github.com/noah-isme/backend-drycleaning/internal/catalog"
	"github.com/noah-isme/backend-drycleaning/internal/health"
	"github.com/noah-isme/backend-drycleaning/internal/obs"
	"github.com/noah-isme/backend-drycleaning/internal/quote"
	"github.com/noah-isme/backend-drycleaning/internal/ratelimit"
	"github.com/noah-isme/backend-drycleaning/internal/security"
)

func newRouter(deps *app.Dependencies, logger zerolog.Logger, httpMetrics *obs.HTTPMetrics) http.Handler {
	cfg := deps.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production", NoStore: true}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))

	if httpMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}

	healthHandler := health.Handler{Checker: deps.Backends()}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	quoteHandler := quote.NewHandler(quote.HandlerConfig{Service: deps.Quotes, Validator: deps.Validator})
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: deps.Catalog})
	limiter := ratelimit.Handler{
		Limiter: deps.Limiter,
		Config:  ratelimit.Config{Key: ratelimit.ClientIPKey, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r.Route("/api/v1/pricing", func(p chi.Router) {
		p.Use(limiter.Middleware)
		p.With(security.BodyLimit{Max: cfg.RequestBodyLimitBytes}.Middleware).Post("/calculate", quoteHandler.Calculate)
		catalogHandler.Routes(p)
	})

	return otelhttp.NewHandler(r, "pricing-api")
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
