// Package postgres provides the PostgreSQL transport for sqlexec.
//
// The default driver is pgx (github.com/jackc/pgx/v5/stdlib); lib/pq can be
// selected with WithDriver(DriverPQ).
//
// Stored procedures are invoked with CALL and every OUT, INOUT and refcursor
// argument is reported by the server as a single result row, one column per
// output parameter. Multiple result sets come back as refcursor outputs;
// their handles are drained with FETCH ALL inside the transaction that opened
// them, so the engine runs cursor-returning procedures in a transaction.
//
// Text commands use positional placeholders ($1, $2, ...) or named ones
// (:customer_id) that are rewritten to positional form before execution.
//
// Importing the package registers the backend:
//
//	import _ "github.com/arloliu/sqlexec/adapter/postgres"
package postgres
