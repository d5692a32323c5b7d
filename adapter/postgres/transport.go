package postgres

import (
	"context"

	"github.com/arloliu/sqlexec/adapter"
	sqladapter "github.com/arloliu/sqlexec/adapter/sql"
	"github.com/arloliu/sqlexec/types"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Registers the "postgres" database/sql driver.
	_ "github.com/lib/pq"
)

func init() {
	adapter.Register(types.BackendPostgres, func(ctx context.Context, connString string, logger types.Logger) (adapter.Transport, error) {
		return Open(ctx, connString, WithTransportOptions(sqladapter.WithLogger(logger)))
	})
}

// Config holds PostgreSQL transport settings.
type Config struct {
	// Driver is the database/sql driver name (default: DriverPGX).
	Driver string

	// Dialect options, e.g. WithFunctionCalls.
	DialectOptions []DialectOption

	// Transport options.
	TransportOptions []sqladapter.Option
}

// Option configures Open.
type Option func(*Config)

// WithDriver selects the database/sql driver: DriverPGX or DriverPQ.
func WithDriver(name string) Option {
	return func(c *Config) {
		if name != "" {
			c.Driver = name
		}
	}
}

// WithDialectOptions appends dialect options.
func WithDialectOptions(opts ...DialectOption) Option {
	return func(c *Config) {
		c.DialectOptions = append(c.DialectOptions, opts...)
	}
}

// WithTransportOptions appends transport options.
func WithTransportOptions(opts ...sqladapter.Option) Option {
	return func(c *Config) {
		c.TransportOptions = append(c.TransportOptions, opts...)
	}
}

// Open connects to PostgreSQL.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - dsn: Connection string (URL or key=value form)
//   - opts: Optional configuration options
//
// Returns:
//   - *sqladapter.Transport: The transport
//   - error: Connection failure
func Open(ctx context.Context, dsn string, opts ...Option) (*sqladapter.Transport, error) {
	cfg := Config{Driver: DriverPGX}
	for _, opt := range opts {
		opt(&cfg)
	}

	return sqladapter.Open(ctx, cfg.Driver, dsn, NewDialect(cfg.DialectOptions...), cfg.TransportOptions...)
}
