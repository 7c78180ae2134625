// Package config assembles the todo service configuration from the
// environment. Variables are unprefixed so the same names work locally, in
// CI, and in the serverless database console.
package config

import (
	"fmt"

	"github.com/bosn/zero-todo/infrastructure/web"
	"github.com/bosn/zero-todo/sdk/environment"
)

// EnvPrefix namespaces the service's environment variables. Empty keeps the
// plain names (DATABASE_URL, PORT, ...).
const EnvPrefix = ""

// Config holds everything the todo service needs to boot.
type Config struct {
	Server web.ServerConfig
}

// Load reads .env when present, then fills the configuration from the
// environment.
func Load() (Config, error) {
	// A missing .env is normal everywhere but local development.
	_ = environment.LoadEnv()

	server, err := web.LoadServerConfig(EnvPrefix)
	if err != nil {
		return Config{}, fmt.Errorf("loading server config: %w", err)
	}

	return Config{
		Server: server,
	}, nil
}
