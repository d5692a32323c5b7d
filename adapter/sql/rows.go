package sql

import (
	"database/sql"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/types"
)

var (
	_ adapter.Rows = (*sqlRows)(nil)
	_ adapter.Rows = (*bufferedRows)(nil)
)

// sqlRows streams the first result set of a *sql.Rows.
type sqlRows struct {
	rows    *sql.Rows
	st      *Statement
	columns []string
	current []any
	err     error
	closed  bool
}

func newSQLRows(rows *sql.Rows, st *Statement) (*sqlRows, error) {
	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}

	return &sqlRows{rows: rows, st: st, columns: cols}, nil
}

func (r *sqlRows) Columns() []string {
	return r.columns
}

func (r *sqlRows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	if !r.rows.Next() {
		return false
	}

	values, err := scanRow(r.rows, len(r.columns))
	if err != nil {
		r.err = err
		return false
	}
	r.current = values

	return true
}

func (r *sqlRows) Values() []any {
	return r.current
}

func (r *sqlRows) Err() error {
	if r.err != nil {
		return r.err
	}

	return r.rows.Err()
}

func (r *sqlRows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	return r.rows.Close()
}

// Parameters reports output values; drivers populate them once the reader is closed.
func (r *sqlRows) Parameters() []types.ExecutedParameter {
	return r.st.Executed(nil)
}

// bufferedRows replays an already buffered table as a reader.
type bufferedRows struct {
	table  *types.Table
	params []types.ExecutedParameter
	pos    int
}

func newBufferedRows(tables []*types.Table, params []types.ExecutedParameter) *bufferedRows {
	r := &bufferedRows{table: &types.Table{}, params: params, pos: -1}
	if len(tables) > 0 && tables[0] != nil {
		r.table = tables[0]
	}

	return r
}

func (r *bufferedRows) Columns() []string {
	return r.table.Columns
}

func (r *bufferedRows) Next() bool {
	if r.pos+1 >= r.table.Len() {
		r.pos = r.table.Len()
		return false
	}
	r.pos++

	return true
}

func (r *bufferedRows) Values() []any {
	if r.pos < 0 || r.pos >= r.table.Len() {
		return nil
	}

	return r.table.Rows[r.pos]
}

func (r *bufferedRows) Err() error {
	return nil
}

func (r *bufferedRows) Close() error {
	return nil
}

func (r *bufferedRows) Parameters() []types.ExecutedParameter {
	return r.params
}
