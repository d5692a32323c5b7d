package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sqladapter "github.com/arloliu/sqlexec/adapter/sql"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
)

// Driver names accepted by WithDriver.
const (
	DriverPGX = "pgx"
	DriverPQ  = "postgres"
)

// Dialect binds commands for PostgreSQL.
type Dialect struct {
	sqladapter.BaseDialect
	functions bool
}

var _ sqladapter.Dialect = (*Dialect)(nil)

// DialectOption configures a Dialect.
type DialectOption func(*Dialect)

// WithFunctionCalls binds stored-procedure commands as set-returning function
// calls (SELECT * FROM name(...)) instead of CALL.
func WithFunctionCalls() DialectOption {
	return func(d *Dialect) {
		d.functions = true
	}
}

// NewDialect creates the PostgreSQL dialect.
func NewDialect(opts ...DialectOption) *Dialect {
	d := &Dialect{BaseDialect: sqladapter.BaseDialect{Name: types.BackendPostgres}}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Bind builds the statement for cmd.
func (d *Dialect) Bind(cmd *command.Command) (*sqladapter.Statement, error) {
	if !cmd.IsProcedure() {
		return bindText(cmd)
	}
	if d.functions {
		return bindFunction(cmd), nil
	}

	return bindCall(cmd)
}

// bindCall binds CALL name($1, ..., $n). Output slots are passed as NULL.
func bindCall(cmd *command.Command) (*sqladapter.Statement, error) {
	st := &sqladapter.Statement{OutputRow: true}
	placeholders := make([]string, 0, cmd.Len())

	for i, p := range cmd.Parameters() {
		switch p.Direction {
		case types.DirectionReturnValue:
			return nil, types.NewValidationError(types.FieldError{
				Field:   fmt.Sprintf("parameters[%d].direction", i),
				Message: "postgres procedures have no return value; use function calls",
			})
		case types.DirectionInput:
			st.Args = append(st.Args, sqladapter.ArgValue(p.Value))
		case types.DirectionInputOutput:
			st.Args = append(st.Args, sqladapter.ArgValue(p.Value))
			st.Outputs = append(st.Outputs, sqladapter.Output{Name: p.Name, Direction: p.Direction})
		default:
			st.Args = append(st.Args, nil)
			st.Outputs = append(st.Outputs, sqladapter.Output{Name: p.Name, Direction: p.Direction})
		}
		placeholders = append(placeholders, "$"+strconv.Itoa(len(st.Args)))
	}

	st.Query = "CALL " + cmd.Text() + "(" + strings.Join(placeholders, ", ") + ")"
	if len(st.Outputs) == 0 {
		st.OutputRow = false
		st.ExecOnly = true
	}

	return st, nil
}

// bindFunction binds SELECT * FROM name($1, ..., $n) over the input arguments.
// With output parameters the single result row carries them, in order.
func bindFunction(cmd *command.Command) *sqladapter.Statement {
	st := &sqladapter.Statement{}
	placeholders := make([]string, 0, cmd.Len())

	for _, p := range cmd.Parameters() {
		if p.Direction == types.DirectionInput || p.Direction == types.DirectionInputOutput {
			st.Args = append(st.Args, sqladapter.ArgValue(p.Value))
			placeholders = append(placeholders, "$"+strconv.Itoa(len(st.Args)))
		}
		if p.Direction.IsOutput() {
			st.Outputs = append(st.Outputs, sqladapter.Output{Name: p.Name, Direction: p.Direction})
		}
	}

	st.Query = "SELECT * FROM " + cmd.Text() + "(" + strings.Join(placeholders, ", ") + ")"
	st.OutputRow = len(st.Outputs) > 0

	return st
}

func bindText(cmd *command.Command) (*sqladapter.Statement, error) {
	for i, p := range cmd.Parameters() {
		if p.Direction != types.DirectionInput {
			return nil, types.NewValidationError(types.FieldError{
				Field:   fmt.Sprintf("parameters[%d].direction", i),
				Message: "postgres text commands cannot have output parameters",
			})
		}
	}

	query, args, ok := rewriteNamed(cmd.Text(), cmd.Parameters())
	if !ok {
		return &sqladapter.Statement{Query: cmd.Text(), Args: sqladapter.InputArgs(cmd)}, nil
	}

	return &sqladapter.Statement{Query: query, Args: args}, nil
}

// FetchCursor drains the refcursor portal name with FETCH ALL.
func (d *Dialect) FetchCursor(ctx context.Context, q sqladapter.Querier, _ *sqladapter.Statement, name string) (*types.Table, error) {
	if name == "" {
		return nil, types.ErrCursorNotFound
	}

	rows, err := q.QueryContext(ctx, "FETCH ALL IN "+quoteIdent(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tbl, err := sqladapter.ScanTable(rows)
	if err != nil {
		return nil, err
	}

	return tbl, rows.Close()
}

// Refiner returns the PostgreSQL error refiner.
func (d *Dialect) Refiner() errmap.Refiner {
	return Refiner()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
