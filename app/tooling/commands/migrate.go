package commands

import (
	"context"
	"flag"
	"fmt"

	"github.com/bosn/zero-todo/infrastructure/postgresdb"
	"github.com/bosn/zero-todo/sdk/logger"
)

// Migrate applies pending schema migrations against DATABASE_URL. The
// embedded migrations are used unless -dir points at a directory on disk,
// which CI uses to run migrations without rebuilding the binary.
func Migrate(ctx context.Context, log *logger.Logger, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	dir := fs.String("dir", "", "apply migrations from this directory instead of the embedded set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pool, err := postgresdb.NewFromEnv("")
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer pool.Close()

	if *dir != "" {
		log.Info("migrate", "source", "disk", "dir", *dir)
		return postgresdb.MigrateDir(ctx, pool, *dir)
	}

	log.Info("migrate", "source", "embedded")
	return postgresdb.Migrate(ctx, pool)
}
