// Package sql implements the sqlexec transport surface on top of database/sql.
//
// The package is backend-neutral. Everything a backend does differently is
// behind a Dialect: how a command is bound (query text, argument style,
// output destinations), where output values come from, and how server-side
// cursors are drained. Backend packages (adapter/sqlserver, adapter/postgres,
// adapter/oracle) provide dialects and register transports built from them.
//
// Example:
//
//	db, _ := sql.Open("pgx", dsn)
//	transport := sqladapter.New(db, postgres.NewDialect())
//	exec, _ := sqlexec.New(transport)
//
// Limitations:
//   - A buffered fill reads every requested result set before returning
//   - Connection pooling is whatever database/sql provides
package sql
