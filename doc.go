// Package sqlexec provides a provider-agnostic command execution engine for
// SQL Server, PostgreSQL and Oracle.
//
// A caller describes a command (text or stored procedure, with named,
// directional, logically typed parameters) and the engine decides how to run
// it on the chosen backend, retries transient failures with a fixed delay,
// extracts and normalizes output values, and reports failures as
// *types.CanonicalError values from a closed, backend-independent taxonomy.
//
// # Key Features
//
//   - Strategy selection: streaming, buffered single table or buffered multiple
//     tables, chosen from backend capabilities and the caller's intent
//   - Ref cursors: PostgreSQL and Oracle cursor outputs become result tables
//     in declaration order
//   - Bounded retry: constant delay, never inside caller-managed transactions
//   - Best-effort normalization of output values to canonical Go types
//   - Canonical errors with stable message keys; driver types never leak
//
// # Basic Usage
//
//	import (
//	    "github.com/arloliu/sqlexec"
//	    "github.com/arloliu/sqlexec/adapter/oracle"
//	    "github.com/arloliu/sqlexec/command"
//	    "github.com/arloliu/sqlexec/types"
//	)
//
//	transport, err := oracle.Open(ctx, dsn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	exec, err := sqlexec.New(transport,
//	    sqlexec.WithRetry(3, time.Second),
//	    sqlexec.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exec.Close()
//
//	res, err := exec.Query(ctx, command.Procedure("crm.get_customer",
//	    command.In(":p_customer_id", types.Int64, 42),
//	    command.RefCursor(":p_customer_cursor"),
//	))
//
// # Strategies
//
// The strategy is chosen once per command:
//
//  1. A backend without streaming support never streams
//  2. A stored procedure with ref-cursor parameters on a backend that returns
//     multiple results through cursors is buffered as multiple tables
//  3. Stream (sequential intent) streams when the backend allows it
//  4. Otherwise Query buffers one table and QueryMulti buffers all of them
//
// # Cancellation
//
// Streaming checks ctx before and after every row. A buffered fill checks ctx
// once before it starts and then runs to completion, bounded only by the
// command timeout. No retry attempt starts after ctx is done.
//
// # Transactions
//
//	tx, err := exec.Begin(ctx)
//	defer tx.Close() // rolls back unless committed
//
// Commands run through a Tx execute exactly once.
//
// # Thread Safety
//
// Executor is safe for concurrent use and serializes its own commands. A Tx
// belongs to the goroutine that began it.
package sqlexec
