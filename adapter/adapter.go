// Package adapter defines the transport capability surface consumed by the
// sqlexec engine, plus a registry of backend transports.
//
// The engine never talks to a driver directly. A Transport hands out Sessions
// (one connection, or one transaction) that can execute a command, stream its
// rows, fill it into buffered tables, and drain server-side cursors.
//
// Backend packages register themselves in init(), mirroring database/sql
// driver registration:
//
//	import _ "github.com/arloliu/sqlexec/adapter/postgres"
//
//	transport, err := adapter.Open(ctx, types.BackendPostgres, dsn, logger)
package adapter

import (
	"context"

	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
)

// ExecResult is the outcome of a non-query execution.
type ExecResult struct {
	// RowsAffected is the affected row count, or -1 when the driver cannot report it.
	RowsAffected int64

	// Parameters is the provider-side parameter state after execution.
	Parameters []types.ExecutedParameter
}

// FillResult is the outcome of a buffered fill.
type FillResult struct {
	// Tables holds the buffered result sets in order.
	Tables []*types.Table

	// Parameters is the provider-side parameter state after execution.
	Parameters []types.ExecutedParameter

	// RowsAffected is the affected row count, or -1 when unknown.
	RowsAffected int64
}

// Rows is a sequential row reader over the first result set of a command.
//
// Values returns the current row and is only valid until the next call to
// Next. Parameters is valid after Close.
type Rows interface {
	Columns() []string
	Next() bool
	Values() []any
	Err() error
	Close() error
	Parameters() []types.ExecutedParameter
}

// Session is one exclusive execution context: a pooled connection or a
// transaction. A Session is not safe for concurrent use.
type Session interface {
	// Exec runs cmd without reading result rows.
	Exec(ctx context.Context, cmd *command.Command) (*ExecResult, error)

	// Query runs cmd and returns a sequential reader.
	Query(ctx context.Context, cmd *command.Command) (Rows, error)

	// Fill runs cmd and buffers its result sets. With all=false only the first
	// result set is kept.
	Fill(ctx context.Context, cmd *command.Command, all bool) (*FillResult, error)

	// FetchCursor drains a server-side cursor returned by the last command
	// executed on this session.
	FetchCursor(ctx context.Context, name string) (*types.Table, error)

	// Release returns the session to its transport.
	Release() error
}

// TxSession is a Session bound to a transaction.
type TxSession interface {
	Session

	// Commit commits the transaction and releases the session.
	Commit() error

	// Rollback rolls back the transaction and releases the session.
	Rollback() error
}

// Transport is a backend connection source.
type Transport interface {
	// Backend returns the backend this transport talks to.
	Backend() types.Backend

	// Acquire returns an exclusive non-transactional session.
	Acquire(ctx context.Context) (Session, error)

	// Begin starts a transaction and returns its session.
	Begin(ctx context.Context) (TxSession, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the transport.
	Close() error
}

// ErrorRefiner is implemented by transports that translate their driver errors.
// The executor appends the refiner to its error mapper.
type ErrorRefiner interface {
	Refiner() errmap.Refiner
}
