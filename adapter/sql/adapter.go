package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/internal/logging"
	"github.com/arloliu/sqlexec/types"
)

// Transport implements adapter.Transport over a *sql.DB.
type Transport struct {
	db      *sql.DB
	dialect Dialect
	logger  types.Logger
}

// Compile-time assertions for the transport capability surface.
var (
	_ adapter.Transport    = (*Transport)(nil)
	_ adapter.ErrorRefiner = (*Transport)(nil)
)

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a transport wrapping an open *sql.DB.
//
// Example:
//
//	db, _ := sql.Open("sqlserver", dsn)
//	transport := sqladapter.New(db, sqlserver.NewDialect())
//
// Parameters:
//   - db: The underlying sql.DB (owned by the transport from now on)
//   - dialect: Backend dialect
//   - opts: Optional configuration options
//
// Returns:
//   - *Transport: The transport
func New(db *sql.DB, dialect Dialect, opts ...Option) *Transport {
	t := &Transport{
		db:      db,
		dialect: dialect,
		logger:  logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Open opens a database with driverName and verifies it with a ping.
//
// Parameters:
//   - ctx: Context for the initial ping
//   - driverName: Registered database/sql driver name
//   - dsn: Connection string
//   - dialect: Backend dialect
//   - opts: Optional configuration options
//
// Returns:
//   - *Transport: The transport
//   - error: Open or ping failure
func Open(ctx context.Context, driverName, dsn string, dialect Dialect, opts ...Option) (*Transport, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driverName, err)
	}

	t := New(db, dialect, opts...)
	t.logger.Debug("sqlexec: transport opened", "backend", dialect.Backend().String(), "driver", driverName)

	return t, nil
}

// DB returns the underlying *sql.DB.
func (t *Transport) DB() *sql.DB {
	return t.db
}

// Dialect returns the backend dialect.
func (t *Transport) Dialect() Dialect {
	return t.dialect
}

// Backend returns the dialect backend.
func (t *Transport) Backend() types.Backend {
	return t.dialect.Backend()
}

// Refiner returns the dialect error refiner.
func (t *Transport) Refiner() errmap.Refiner {
	return t.dialect.Refiner()
}

// Acquire reserves one pooled connection as a session.
func (t *Transport) Acquire(ctx context.Context) (adapter.Session, error) {
	conn, err := t.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return &session{q: conn, dialect: t.dialect, logger: t.logger, release: conn.Close}, nil
}

// Begin starts a transaction. The transaction is rolled back by database/sql
// if ctx is canceled before Commit.
func (t *Transport) Begin(ctx context.Context) (adapter.TxSession, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &txSession{
		session: session{q: tx, dialect: t.dialect, logger: t.logger},
		tx:      tx,
	}, nil
}

// Ping verifies the database is reachable.
func (t *Transport) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the database.
func (t *Transport) Close() error {
	return t.db.Close()
}
