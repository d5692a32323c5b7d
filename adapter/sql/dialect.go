package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"reflect"

	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
)

// Querier is the subset of *sql.Conn and *sql.Tx used by sessions and dialects.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Compile-time assertions that both connection and transaction are Queriers.
var (
	_ Querier = (*sql.Conn)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Dialect adapts commands to one backend's driver.
type Dialect interface {
	// Backend returns the backend this dialect speaks.
	Backend() types.Backend

	// Bind builds the driver statement for cmd.
	Bind(cmd *command.Command) (*Statement, error)

	// FetchCursor drains the cursor handle name returned by st.
	FetchCursor(ctx context.Context, q Querier, st *Statement, name string) (*types.Table, error)

	// Refiner returns the backend error refiner, or nil.
	Refiner() errmap.Refiner
}

// Output is one output slot of a bound statement.
type Output struct {
	// Name is the declared parameter name.
	Name string

	// Direction is the declared direction.
	Direction types.Direction

	// Read returns the value reported by the driver after execution.
	// Unused when the statement reads outputs from a result row.
	Read func() any
}

// Statement is a bound command ready for the driver.
type Statement struct {
	// Query is the text handed to the driver.
	Query string

	// Args are the driver arguments.
	Args []any

	// Outputs lists output slots in declaration order.
	Outputs []Output

	// OutputRow reports that output values arrive as the first result row,
	// one column per output slot in order.
	OutputRow bool

	// ExecOnly reports that the statement produces no result sets.
	ExecOnly bool

	// Cursors holds dialect-owned cursor objects keyed by handle name.
	Cursors map[string]any
}

// Executed returns the provider-side parameter state for the output slots.
// row is the output row for OutputRow statements and is ignored otherwise.
func (st *Statement) Executed(row []any) []types.ExecutedParameter {
	if st == nil || len(st.Outputs) == 0 {
		return nil
	}

	out := make([]types.ExecutedParameter, 0, len(st.Outputs))
	for i, o := range st.Outputs {
		var v any
		switch {
		case st.OutputRow:
			if i < len(row) {
				v = row[i]
			}
		case o.Read != nil:
			v = o.Read()
		}
		out = append(out, types.ExecutedParameter{Name: o.Name, Direction: o.Direction, Value: v})
	}

	return out
}

// OutputReader returns a Read function that dereferences dest after execution.
// Null wrappers (sql.NullString and friends) are unwrapped; NULL reads as nil.
func OutputReader(dest any) func() any {
	return func() any {
		return Deref(dest)
	}
}

// Deref dereferences pointers and unwraps driver.Valuer values.
func Deref(v any) any {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	inner := rv.Interface()
	if valuer, ok := inner.(driver.Valuer); ok {
		if dv, err := valuer.Value(); err == nil {
			return dv
		}
	}

	return inner
}

// InputArgs returns the values of Input and InputOutput parameters in
// declaration order, for positional drivers.
func InputArgs(cmd *command.Command) []any {
	args := make([]any, 0, cmd.Len())
	for _, p := range cmd.Parameters() {
		if p.Direction == types.DirectionInput || p.Direction == types.DirectionInputOutput {
			args = append(args, ArgValue(p.Value))
		}
	}

	return args
}

// ArgValue prepares a parameter value for a driver: DBNull becomes nil.
func ArgValue(v any) any {
	if types.IsNull(v) {
		return nil
	}

	return v
}

// BaseDialect is a minimal dialect for drivers with positional placeholders
// and no stored procedures or cursors. Backend dialects embed it.
type BaseDialect struct {
	// Name is the backend reported by Backend.
	Name types.Backend
}

// Compile-time assertion that BaseDialect implements Dialect.
var _ Dialect = BaseDialect{}

// Backend returns the backend name.
func (d BaseDialect) Backend() types.Backend {
	return d.Name
}

// Bind binds text commands positionally. Output parameters and stored
// procedures are rejected as validation errors.
func (d BaseDialect) Bind(cmd *command.Command) (*Statement, error) {
	if cmd.IsProcedure() {
		return nil, types.NewValidationError(types.FieldError{
			Field:   "kind",
			Message: fmt.Sprintf("stored procedures are not supported by the %s dialect", d.Name),
		})
	}
	for i, p := range cmd.Parameters() {
		if p.Direction != types.DirectionInput {
			return nil, types.NewValidationError(types.FieldError{
				Field:   fmt.Sprintf("parameters[%d].direction", i),
				Message: "output parameters require a stored-procedure capable dialect",
			})
		}
	}

	return &Statement{Query: cmd.Text(), Args: InputArgs(cmd)}, nil
}

// FetchCursor always fails: BaseDialect has no cursors.
func (d BaseDialect) FetchCursor(_ context.Context, _ Querier, _ *Statement, name string) (*types.Table, error) {
	return nil, fmt.Errorf("%w: %q on %s", types.ErrCursorsUnsupported, name, d.Name)
}

// Refiner returns nil.
func (d BaseDialect) Refiner() errmap.Refiner {
	return nil
}
