// The tooling binary bundles the administrative commands used by CI and
// local development: migrations, ephemeral database lifecycle, and
// serverless instance provisioning.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bosn/zero-todo/app/tooling/commands"
	"github.com/bosn/zero-todo/sdk/environment"
	"github.com/bosn/zero-todo/sdk/logger"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// A missing .env is normal everywhere but local development.
	_ = environment.LoadEnv()

	log, err := logger.NewFromEnv("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	switch cmd := os.Args[1]; cmd {
	case "migrate":
		err = commands.Migrate(ctx, log, os.Args[2:])

	case "create-ci-db":
		err = commands.CreateCIDB(ctx, log)

	case "drop-ci-db":
		err = commands.DropCIDB(ctx, log)

	case "provision":
		err = commands.ProvisionInstance(ctx, log)

	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("tooling", "command", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: tooling <command>

commands:
  migrate [-dir <path>]   apply pending schema migrations
  create-ci-db            create an ephemeral database for this CI run
  drop-ci-db              drop the ephemeral CI database
  provision               get or create a serverless database instance`)
}
