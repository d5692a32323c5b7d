// Package types provides shared types and error definitions for the sqlexec library.
//
// This is a leaf package with zero sqlexec imports to prevent import cycles.
// All packages in sqlexec can safely import this package.
//
// # Types
//
// Backend identifies which relational backend is being targeted:
//
//	const (
//	    BackendSQLServer Backend = "sqlserver"
//	    BackendPostgres  Backend = "postgres"
//	    BackendOracle    Backend = "oracle"
//	)
//
// LogicalType is the closed cross-backend parameter type (String, Int32, Decimal,
// GUID, DateTimeOffset, Interval, RefCursor, ...). Direction, CommandKind, Intent
// and Strategy describe how a command is declared and how it will run.
//
// # Errors
//
// Every failure surfaced by the executor is a *CanonicalError. Its Kind is one of
// a closed set, and errors.Is matches the kind sentinels:
//
//   - ErrTimeout: deadline exceeded or canceled
//   - ErrValidation: malformed command or parameter declaration
//   - ErrConnection: the backend could not be reached
//   - ErrDeadlock: the backend chose this command as a deadlock victim
//   - ErrConstraint: a unique, foreign key or check constraint was violated
//   - ErrUnknown: anything not classified
//
// The originating driver error is never reachable through Unwrap; only its
// type name is kept in Details for diagnostics.
//
// # Results
//
// Result carries the buffered tables, the normalized output parameter values
// (keyed by prefix-stripped name) and the strategy that produced them:
//
//	type Result struct {
//	    Tables       []*Table
//	    Outputs      map[string]any
//	    ReturnValue  any
//	    RowsAffected int64
//	    Strategy     Strategy
//	}
package types
