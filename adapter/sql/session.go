package sql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
)

// session runs commands on one connection or transaction.
type session struct {
	q       Querier
	dialect Dialect
	logger  types.Logger
	last    *Statement
	release func() error
}

var (
	_ adapter.Session   = (*session)(nil)
	_ adapter.TxSession = (*txSession)(nil)
)

func (s *session) bind(cmd *command.Command) (*Statement, error) {
	st, err := s.dialect.Bind(cmd)
	if err != nil {
		return nil, err
	}
	s.last = st
	s.logger.Debug("sqlexec: statement bound",
		"backend", s.dialect.Backend().String(),
		"query", st.Query,
		"args", len(st.Args),
		"outputs", len(st.Outputs),
	)

	return st, nil
}

// Exec runs cmd without reading result rows.
func (s *session) Exec(ctx context.Context, cmd *command.Command) (*adapter.ExecResult, error) {
	st, err := s.bind(cmd)
	if err != nil {
		return nil, err
	}

	if st.OutputRow {
		fill, err := s.fill(ctx, st, false)
		if err != nil {
			return nil, err
		}

		return &adapter.ExecResult{RowsAffected: fill.RowsAffected, Parameters: fill.Parameters}, nil
	}

	res, err := s.q.ExecContext(ctx, st.Query, st.Args...)
	if err != nil {
		return nil, err
	}

	return &adapter.ExecResult{RowsAffected: rowsAffected(res), Parameters: st.Executed(nil)}, nil
}

// Query runs cmd and returns a reader over its first result set.
func (s *session) Query(ctx context.Context, cmd *command.Command) (adapter.Rows, error) {
	st, err := s.bind(cmd)
	if err != nil {
		return nil, err
	}

	if st.OutputRow || st.ExecOnly {
		fill, err := s.fill(ctx, st, false)
		if err != nil {
			return nil, err
		}

		return newBufferedRows(fill.Tables, fill.Parameters), nil
	}

	rows, err := s.q.QueryContext(ctx, st.Query, st.Args...)
	if err != nil {
		return nil, err
	}

	return newSQLRows(rows, st)
}

// Fill runs cmd and buffers its result sets.
func (s *session) Fill(ctx context.Context, cmd *command.Command, all bool) (*adapter.FillResult, error) {
	st, err := s.bind(cmd)
	if err != nil {
		return nil, err
	}

	return s.fill(ctx, st, all)
}

func (s *session) fill(ctx context.Context, st *Statement, all bool) (*adapter.FillResult, error) {
	if st.ExecOnly {
		res, err := s.q.ExecContext(ctx, st.Query, st.Args...)
		if err != nil {
			return nil, err
		}

		return &adapter.FillResult{RowsAffected: rowsAffected(res), Parameters: st.Executed(nil)}, nil
	}

	rows, err := s.q.QueryContext(ctx, st.Query, st.Args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &adapter.FillResult{RowsAffected: -1}
	var outRow []any
	first := true
	for {
		tbl, err := ScanTable(rows)
		if err != nil {
			return nil, err
		}

		switch {
		case first && st.OutputRow:
			if tbl.Len() > 0 {
				outRow = tbl.Rows[0]
			}
		case len(tbl.Columns) > 0:
			result.Tables = append(result.Tables, tbl)
		}
		first = false

		if !all && len(result.Tables) > 0 {
			break
		}
		if !rows.NextResultSet() {
			break
		}
	}

	// Output parameters are only populated once the reader is closed.
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.Parameters = st.Executed(outRow)

	return result, nil
}

// FetchCursor drains a cursor returned by the last statement.
func (s *session) FetchCursor(ctx context.Context, name string) (*types.Table, error) {
	if s.last == nil {
		return nil, types.ErrCursorNotFound
	}

	return s.dialect.FetchCursor(ctx, s.q, s.last, name)
}

// Release returns the connection to the pool.
func (s *session) Release() error {
	if s.release == nil {
		return nil
	}
	release := s.release
	s.release = nil

	return release()
}

// txSession is a session bound to a *sql.Tx.
type txSession struct {
	session
	tx *sql.Tx
}

// Commit commits the transaction.
func (s *txSession) Commit() error {
	return s.tx.Commit()
}

// Rollback rolls back the transaction. Rolling back a finished transaction is not an error.
func (s *txSession) Rollback() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

// ScanTable buffers the current result set of rows.
func ScanTable(rows *sql.Rows) (*types.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	tbl := &types.Table{Columns: cols}
	for rows.Next() {
		values, err := scanRow(rows, len(cols))
		if err != nil {
			return nil, err
		}
		tbl.Rows = append(tbl.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tbl, nil
}

func scanRow(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	return values, nil
}

func rowsAffected(res sql.Result) int64 {
	if res == nil {
		return -1
	}
	n, err := res.RowsAffected()
	if err != nil {
		return -1
	}

	return n
}
