package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-drycleaning/internal/common"
)

// ErrNotConfigured is returned by a check whose dependency is intentionally absent.
// Readiness reports such a dependency as disabled instead of failing.
var ErrNotConfigured = errors.New("not configured")

const (
	statusOK       = "ok"
	statusDisabled = "disabled"
)

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady toggles readiness. The server flips it off when shutdown begins so load
// balancers drain traffic before listeners close.
func SetReady(v bool) { ready.Store(v) }

// Checker represents dependencies that can be pinged for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Backends pings the optional Postgres pool and Redis client backing the catalog.
type Backends struct {
	DB    *pgxpool.Pool
	Redis redis.UniversalClient
}

// PingDB pings Postgres within timeout.
func (p Backends) PingDB(ctx context.Context, timeout time.Duration) error {
	if p.DB == nil {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.DB.Ping(ctx)
}

// PingRedis pings Redis within timeout.
func (p Backends) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency pings.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	if h.Checker == nil {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "dependencies unavailable"})
		return
	}
	ctx := r.Context()
	status := map[string]string{
		"db":    pingStatus(h.Checker.PingDB(ctx, h.dbTimeout())),
		"redis": pingStatus(h.Checker.PingRedis(ctx, h.redisTimeout())),
	}
	code := http.StatusOK
	for _, s := range status {
		if s != statusOK && s != statusDisabled {
			code = http.StatusServiceUnavailable
		}
	}
	common.JSON(w, code, status)
}

func pingStatus(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, ErrNotConfigured):
		return statusDisabled
	default:
		return err.Error()
	}
}

func (h Handler) dbTimeout() time.Duration {
	if h.DBTimeout <= 0 {
		return 500 * time.Millisecond
	}
	return h.DBTimeout
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
