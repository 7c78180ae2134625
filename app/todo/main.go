// The todo service exposes the REST API and the embedded frontend for the
// multi-user todo list.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bosn/zero-todo/app/todo/config"
	"github.com/bosn/zero-todo/bridge/repositories/healthbridge"
	"github.com/bosn/zero-todo/bridge/repositories/todosrepobridge"
	"github.com/bosn/zero-todo/bridge/scaffolding/mid"
	"github.com/bosn/zero-todo/client"
	"github.com/bosn/zero-todo/core/repositories/todosrepo"
	"github.com/bosn/zero-todo/core/repositories/todosrepo/stores/todospgxstore"
	"github.com/bosn/zero-todo/core/repositories/todosrepo/stores/todosrediscache"
	"github.com/bosn/zero-todo/infrastructure/postgresdb"
	"github.com/bosn/zero-todo/infrastructure/redisdb"
	"github.com/bosn/zero-todo/infrastructure/web"
	"github.com/bosn/zero-todo/sdk/logger"
	"github.com/bosn/zero-todo/sdk/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	tel := telemetry.NewTelemetry()

	log, err := logger.NewFromEnv(config.EnvPrefix, logger.WithTraceIDFn(tel.GetTraceID))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, tel); err != nil {
		log.Error("startup", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger, tel telemetry.Telemetry) error {
	ctx := context.Background()

	log.Info("startup", "status", "initializing database support")

	pool, err := postgresdb.NewFromEnv(config.EnvPrefix)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Info("shutdown", "status", "closing database pool")
		pool.Close()
	}()

	// The schema must be current before the first request is served.
	if err := postgresdb.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrating db: %w", err)
	}

	// Redis is optional; a nil client means the list cache is off.
	redisClient, err := redisdb.NewFromEnv(config.EnvPrefix)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// -------------------------------------------------------------------------
	// Repositories

	repoOpts := []todosrepo.RepositoryOption{}
	if redisClient != nil {
		log.Info("startup", "status", "todo list cache enabled")
		repoOpts = append(repoOpts, todosrepo.WithCache(todosrediscache.NewCache(log, redisClient)))
	}

	todosRepo := todosrepo.NewRepository(log,
		todospgxstore.NewStore(log, pool),
		repoOpts...)

	// -------------------------------------------------------------------------
	// Web handler and routes

	webHandler := web.NewWebHandler(
		web.WithLogging(log),
		web.WithTelemetry(tel),
		web.WithGlobalMiddleware(
			mid.CORS(cfg.Server.CORSOrigins...),
			mid.Logger(log),
			mid.Errors(log),
			mid.Metrics(),
			mid.Panics(),
		),
	)

	api := webHandler.Group("/api")

	healthbridge.AddHttpRoutes(api, healthbridge.Config{
		Log:   log,
		Pool:  pool,
		Redis: redisClient,
	})

	todosrepobridge.AddHttpRoutes(api, todosrepobridge.Config{
		Log:        log,
		Repository: todosRepo,
	})

	if err := client.AddRoutes(webHandler); err != nil {
		return fmt.Errorf("mounting client: %w", err)
	}

	// -------------------------------------------------------------------------
	// Start and wait

	server := web.NewWebServer(cfg.Server, webHandler, logger.NewStdLogger(log, slog.LevelError))

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("startup", "status", "api router started", "port", cfg.Server.Port)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		log.Info("shutdown", "status", "shutdown started", "signal", sig.String())
		defer log.Info("shutdown", "status", "shutdown complete")

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
