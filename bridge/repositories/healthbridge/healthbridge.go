// Package healthbridge maintains the web bridge for liveness and readiness
// probes.
package healthbridge

import (
	"context"
	"net/http"

	"github.com/bosn/zero-todo/bridge/scaffolding/errs"
	"github.com/bosn/zero-todo/infrastructure/postgresdb"
	"github.com/bosn/zero-todo/infrastructure/redisdb"
	"github.com/bosn/zero-todo/infrastructure/web"
	"github.com/bosn/zero-todo/sdk/logger"
	"github.com/redis/go-redis/v9"
)

// Config contains everything the bridge needs to construct its routes.
type Config struct {
	Log   *logger.Logger
	Pool  *postgresdb.Pool
	Redis *redis.Client
}

type bridge struct {
	log   *logger.Logger
	pool  *postgresdb.Pool
	redis *redis.Client
}

// AddHttpRoutes registers the health routes on the group.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := &bridge{
		log:   cfg.Log,
		pool:  cfg.Pool,
		redis: cfg.Redis,
	}

	group.GET("/health", b.httpLiveness)
	group.GET("/health/store", b.httpReadiness)
}

type healthResponse struct {
	OK bool `json:"ok"`
}

// httpLiveness reports that the process is up and serving.
func (b *bridge) httpLiveness(ctx context.Context, r *http.Request) web.Encoder {
	return web.NewJSONResponse(healthResponse{OK: true})
}

// httpReadiness reports whether the backing stores answer.
func (b *bridge) httpReadiness(ctx context.Context, r *http.Request) web.Encoder {
	if err := postgresdb.StatusCheck(ctx, b.pool); err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	if b.redis != nil {
		if err := redisdb.StatusCheck(ctx, b.redis); err != nil {
			return errs.New(errs.InternalOnlyLog, err)
		}
	}

	return web.NewJSONResponse(healthResponse{OK: true})
}
