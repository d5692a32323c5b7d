package types

import (
	"errors"
	"strings"
)

// ErrNoRows is returned by row accessors when a table has no rows.
var ErrNoRows = errors.New("sqlexec: no rows in result")

// dbNull is the type of the backend null sentinel.
type dbNull struct{}

func (dbNull) String() string { return "<null>" }

// DBNull is the backend null sentinel. Transports report it for SQL NULL
// values they cannot express as a plain nil; the normalizer and extractor
// collapse it to nil.
var DBNull any = dbNull{}

// IsNull reports whether v is nil or the DBNull sentinel.
func IsNull(v any) bool {
	return v == nil || v == DBNull
}

// ExecutedParameter is the provider-side state of a parameter after execution.
type ExecutedParameter struct {
	// Name is the parameter name as the provider reports it (prefix optional).
	Name string

	// Direction is the declared direction.
	Direction Direction

	// Value is the raw value reported by the provider.
	Value any
}

// Table is one buffered result set.
type Table struct {
	// Columns holds the column names in result order.
	Columns []string

	// Rows holds the row values; each row has len(Columns) entries.
	Rows [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// Row returns a column-aware view of row i.
func (t *Table) Row(i int) Row {
	return Row{columns: t.Columns, values: t.Rows[i]}
}

// First returns the first row or ErrNoRows.
func (t *Table) First() (Row, error) {
	if t.Len() == 0 {
		return Row{}, ErrNoRows
	}

	return t.Row(0), nil
}

// Row is a column-aware view of one result row.
type Row struct {
	columns []string
	values  []any
}

// NewRow creates a Row over columns and values. Both slices are used directly.
func NewRow(columns []string, values []any) Row {
	return Row{columns: columns, values: values}
}

// Columns returns the column names.
func (r Row) Columns() []string {
	return r.columns
}

// Values returns the raw values in column order.
func (r Row) Values() []any {
	return r.values
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.values)
}

// At returns the value at column index i.
func (r Row) At(i int) any {
	return r.values[i]
}

// Get returns the value of the named column, matched case-insensitively.
//
// Returns:
//   - any: The value (nil for SQL NULL)
//   - bool: false if no such column exists
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.columns {
		if strings.EqualFold(c, name) {
			return r.values[i], true
		}
	}

	return nil, false
}

// Result is the outcome of one successful command execution.
//
// Only the final attempt's result is ever observable.
type Result struct {
	// Tables holds buffered result sets, followed by one table per drained ref cursor
	// in parameter declaration order. Empty for streamed and non-query executions.
	Tables []*Table

	// Outputs maps prefix-stripped parameter names to normalized output values.
	// Nil when the command declared no parameters or the provider reported none.
	// Ref-cursor parameters never appear here.
	Outputs map[string]any

	// ReturnValue is the stored procedure return value, when reported.
	ReturnValue any

	// RowsAffected is the affected row count for non-query executions, or -1 when unknown.
	RowsAffected int64

	// Strategy is the execution strategy that produced this result.
	Strategy Strategy
}

// Table returns table i, or nil when out of range.
func (r *Result) Table(i int) *Table {
	if r == nil || i < 0 || i >= len(r.Tables) {
		return nil
	}

	return r.Tables[i]
}

// Output returns the output value for name. The name may carry a prefix and
// is matched case-insensitively.
func (r *Result) Output(name string) (any, bool) {
	if r == nil || r.Outputs == nil {
		return nil, false
	}
	if v, ok := r.Outputs[name]; ok {
		return v, true
	}
	stripped := name
	if stripped != "" && strings.ContainsRune("@:?", rune(stripped[0])) {
		stripped = stripped[1:]
	}
	for k, v := range r.Outputs {
		if strings.EqualFold(k, stripped) {
			return v, true
		}
	}

	return nil, false
}
