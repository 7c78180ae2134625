// Package postgresdb provides the connection pool and error translation for
// the Postgres store.
package postgresdb

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bosn/zero-todo/sdk/environment"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	uniqueViolation = "23505"
	undefinedTable  = "42P01"
)

// Set of error variables for CRUD operations.
var (
	ErrDBNotFound        = pgx.ErrNoRows
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
	ErrUndefinedTable    = errors.New("undefined table")
)

type Pool = pgxpool.Pool

// Options represents the exportable database configuration.
type Options struct {
	DatabaseURL string        `env:"DATABASE_URL" required:"true"`
	MaxConns    int           `env:"DATABASE_MAX_CONNS" default:"10"`
	MinConns    int           `env:"DATABASE_MIN_CONNS" default:"2"`
	MaxLifetime time.Duration `env:"DATABASE_MAX_LIFETIME" default:"1h"`
	MaxIdleTime time.Duration `env:"DATABASE_MAX_IDLE_TIME" default:"30m"`
	HealthCheck time.Duration `env:"DATABASE_HEALTH_CHECK" default:"1m"`
	DisableSSL  bool          `env:"DATABASE_DISABLE_SSL" default:"false"`
	SSLCAPath   string        `env:"DATABASE_SSL_CA_PATH" default:""`
}

// options holds the internal runtime configuration.
type options struct {
	databaseURL    string
	maxConns       int
	minConns       int
	maxLifetime    time.Duration
	maxIdleTime    time.Duration
	healthCheck    time.Duration
	disableSSL     bool
	sslCAPath      string
	logger         *slog.Logger
	tracer         pgx.QueryTracer
	connectTimeout time.Duration
}

// Option is a function that configures the database options.
type Option func(*options)

// WithLogger sets a custom logger for the database.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets a custom query tracer.
func WithTracer(tracer pgx.QueryTracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithDatabaseURL overrides the database URL.
func WithDatabaseURL(url string) Option {
	return func(o *options) {
		o.databaseURL = url
	}
}

// WithMaxConns sets the maximum number of connections.
func WithMaxConns(max int) Option {
	return func(o *options) {
		o.maxConns = max
	}
}

// WithConnectTimeout sets the connection timeout.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.connectTimeout = timeout
	}
}

// NewFromEnv creates a new database connection pool using environment
// variables.
func NewFromEnv(prefix string, opts ...Option) (*pgxpool.Pool, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	return newDatabase(cfg, opts...)
}

// NewTestDB creates a test database connection with relaxed pool limits.
func NewTestDB(conn string, opts ...Option) (*pgxpool.Pool, error) {
	cfg := Options{
		DatabaseURL: conn,
		MaxConns:    10,
		MinConns:    1,
		MaxLifetime: time.Hour,
		MaxIdleTime: time.Hour,
		HealthCheck: time.Hour,
		DisableSSL:  true,
	}
	return newDatabase(cfg, opts...)
}

// newDatabase creates a new database connection with given config and
// applies options.
func newDatabase(cfg Options, opts ...Option) (*pgxpool.Pool, error) {
	internalOpts := &options{
		databaseURL:    cfg.DatabaseURL,
		maxConns:       cfg.MaxConns,
		minConns:       cfg.MinConns,
		maxLifetime:    cfg.MaxLifetime,
		maxIdleTime:    cfg.MaxIdleTime,
		healthCheck:    cfg.HealthCheck,
		disableSSL:     cfg.DisableSSL,
		sslCAPath:      cfg.SSLCAPath,
		connectTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(internalOpts)
	}

	if internalOpts.logger == nil {
		internalOpts.logger = slog.Default()
	}

	return openDatabase(internalOpts)
}

// openDatabase creates the actual database connection.
func openDatabase(opts *options) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(opts.maxConns)
	poolConfig.MinConns = int32(opts.minConns)
	poolConfig.MaxConnLifetime = opts.maxLifetime
	poolConfig.MaxConnIdleTime = opts.maxIdleTime
	poolConfig.HealthCheckPeriod = opts.healthCheck

	if err := configureTLS(poolConfig, opts.disableSSL, opts.sslCAPath); err != nil {
		return nil, fmt.Errorf("configuring tls: %w", err)
	}

	if opts.tracer != nil {
		poolConfig.ConnConfig.Tracer = opts.tracer
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// configureTLS applies the SSL toggle and optional CA bundle on top of
// whatever sslmode the connection string already requested.
func configureTLS(poolConfig *pgxpool.Config, disableSSL bool, caPath string) error {
	if disableSSL {
		poolConfig.ConnConfig.TLSConfig = nil
		return nil
	}

	if caPath == "" {
		return nil
	}

	caCert, err := os.ReadFile(caPath)
	if err != nil {
		return fmt.Errorf("reading ca file: %w", err)
	}

	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM(caCert) {
		return fmt.Errorf("no certificates found in %s", caPath)
	}

	tlsConfig := poolConfig.ConnConfig.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: poolConfig.ConnConfig.Host}
	}
	tlsConfig.RootCAs = certPool
	tlsConfig.MinVersion = tls.VersionTLS12
	poolConfig.ConnConfig.TLSConfig = tlsConfig

	return nil
}

// StatusCheck returns nil if it can successfully talk to the database.
func StatusCheck(ctx context.Context, pool *pgxpool.Pool) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	return pool.Ping(ctx)
}

// HandlePgError converts PostgreSQL errors to application errors.
func HandlePgError(err error) error {
	if err == nil {
		return nil
	}

	var pqerr *pgconn.PgError
	if errors.As(err, &pqerr) {
		switch pqerr.Code {
		case undefinedTable:
			return ErrUndefinedTable
		case uniqueViolation:
			return ErrDBDuplicatedEntry
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDBNotFound
	}

	return err
}
