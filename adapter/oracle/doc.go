// Package oracle provides the Oracle transport for sqlexec, built on the pure
// Go driver github.com/sijms/go-ora/v2.
//
// Stored procedures run as anonymous PL/SQL blocks:
//
//	BEGIN pkg.get_customer(:p_id, :p_customer_cursor); END;
//
// A ReturnValue parameter turns the call into a function call assigned to
// that parameter. Ref-cursor outputs are bound as go_ora.RefCursor values and
// reported as opaque handle names; FetchCursor drains them on the session
// that executed the block. Oracle has no sequential reader support in
// sqlexec, so every result is buffered.
//
// Importing the package registers the backend:
//
//	import _ "github.com/arloliu/sqlexec/adapter/oracle"
package oracle
