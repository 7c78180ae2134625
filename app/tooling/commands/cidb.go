package commands

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bosn/zero-todo/sdk/environment"
	"github.com/bosn/zero-todo/sdk/logger"
	"github.com/jackc/pgx/v5"
)

var dbNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// BuildCIDBName derives a database name unique to the current CI run. Local
// invocations without GitHub variables fall back to a timestamp.
func BuildCIDBName(runID, attempt string) string {
	if runID == "" {
		runID = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if attempt == "" {
		attempt = "1"
	}
	return dbNameSanitizer.ReplaceAllString("ci_"+runID+"_"+attempt, "_")
}

// parseBaseConnection validates the base connection string and returns its
// parsed URL. Only postgres schemes are accepted.
func parseBaseConnection(base string) (*url.URL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base connection string: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return nil, fmt.Errorf("expected postgres:// connection string, got: %s://", u.Scheme)
	}
	return u, nil
}

// deriveDatabaseURL swaps the database name into the base connection string.
func deriveDatabaseURL(base *url.URL, dbName string) string {
	derived := *base
	derived.Path = "/" + dbName
	return derived.String()
}

// appendGitHubEnv appends KEY=value lines to the file named by GITHUB_ENV,
// making the values visible to later workflow steps. Outside GitHub Actions
// this is a no-op.
func appendGitHubEnv(values map[string]string, order []string) error {
	envFile := os.Getenv("GITHUB_ENV")
	if envFile == "" {
		return nil
	}

	var sb strings.Builder
	for _, key := range order {
		sb.WriteString(key)
		sb.WriteString("=")
		sb.WriteString(values[key])
		sb.WriteString("\n")
	}

	f, err := os.OpenFile(envFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening GITHUB_ENV file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(sb.String()); err != nil {
		return fmt.Errorf("writing GITHUB_ENV file: %w", err)
	}
	return nil
}

// CreateCIDB creates a database named after the current CI run on the
// instance behind BASE_CONNECTION_STRING, then exports CI_DB_NAME and the
// derived DATABASE_URL to GITHUB_ENV.
func CreateCIDB(ctx context.Context, log *logger.Logger) error {
	base := os.Getenv("BASE_CONNECTION_STRING")
	if base == "" {
		return fmt.Errorf("BASE_CONNECTION_STRING is required")
	}

	baseURL, err := parseBaseConnection(base)
	if err != nil {
		return err
	}

	dbName := BuildCIDBName(os.Getenv("GITHUB_RUN_ID"), os.Getenv("GITHUB_RUN_ATTEMPT"))

	conn, err := pgx.Connect(ctx, base)
	if err != nil {
		return fmt.Errorf("connecting to base instance: %w", err)
	}
	defer conn.Close(ctx)

	// CREATE DATABASE cannot be parameterized; the identifier is sanitized
	// above and quoted here.
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return fmt.Errorf("creating database %s: %w", dbName, err)
	}
	log.Info("create-ci-db", "status", "created database", "name", dbName)

	databaseURL := deriveDatabaseURL(baseURL, dbName)
	log.Info("create-ci-db", "database_url", maskConnectionString(databaseURL))

	values := map[string]string{
		"CI_DB_NAME":   dbName,
		"DATABASE_URL": databaseURL,
		"EXPIRES_AT":   environment.GetEnvOrDefault("EXPIRES_AT", ""),
	}
	if err := appendGitHubEnv(values, []string{"CI_DB_NAME", "DATABASE_URL", "EXPIRES_AT"}); err != nil {
		return err
	}

	log.Info("create-ci-db", "status", "exported CI_DB_NAME, DATABASE_URL and EXPIRES_AT to GITHUB_ENV")
	return nil
}

// DropCIDB drops the database created by CreateCIDB. An unset CI_DB_NAME is
// not an error so cleanup steps can run unconditionally.
func DropCIDB(ctx context.Context, log *logger.Logger) error {
	dbName := os.Getenv("CI_DB_NAME")
	if dbName == "" {
		log.Info("drop-ci-db", "status", "CI_DB_NAME is empty, skipping drop")
		return nil
	}

	base := os.Getenv("BASE_CONNECTION_STRING")
	if base == "" {
		return fmt.Errorf("BASE_CONNECTION_STRING is required")
	}
	if _, err := parseBaseConnection(base); err != nil {
		return err
	}

	conn, err := pgx.Connect(ctx, base)
	if err != nil {
		return fmt.Errorf("connecting to base instance: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return fmt.Errorf("dropping database %s: %w", dbName, err)
	}

	log.Info("drop-ci-db", "status", "dropped database", "name", dbName)
	return nil
}
