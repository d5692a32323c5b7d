package oracle

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	sqladapter "github.com/arloliu/sqlexec/adapter/sql"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/normalize"
	"github.com/arloliu/sqlexec/types"
	go_ora "github.com/sijms/go-ora/v2"
)

// DriverName is the database/sql driver used by the transport.
const DriverName = "oracle"

const (
	defaultStringSize = 4000
	defaultBinarySize = 2000
)

// Dialect binds commands for go-ora.
type Dialect struct {
	sqladapter.BaseDialect
}

var _ sqladapter.Dialect = (*Dialect)(nil)

// NewDialect creates the Oracle dialect.
func NewDialect() *Dialect {
	return &Dialect{BaseDialect: sqladapter.BaseDialect{Name: types.BackendOracle}}
}

// Bind builds the PL/SQL block or query for cmd. Parameters bind by name.
func (d *Dialect) Bind(cmd *command.Command) (*sqladapter.Statement, error) {
	st := &sqladapter.Statement{}
	var (
		call     []string
		retParam string
	)

	for i, p := range cmd.Parameters() {
		name := p.StrippedName()
		if p.Type == types.RefCursor && !cmd.IsProcedure() {
			return nil, types.NewValidationError(types.FieldError{
				Field:   fmt.Sprintf("parameters[%d].type", i),
				Message: "ref cursors require a stored-procedure command",
			})
		}

		switch {
		case p.Direction == types.DirectionInput:
			st.Args = append(st.Args, sql.Named(name, sqladapter.ArgValue(p.Value)))
		case p.Type == types.RefCursor:
			cursor := new(go_ora.RefCursor)
			if st.Cursors == nil {
				st.Cursors = make(map[string]any)
			}
			st.Cursors[name] = cursor
			st.Args = append(st.Args, sql.Named(name, sql.Out{Dest: cursor}))
			st.Outputs = append(st.Outputs, sqladapter.Output{
				Name:      p.Name,
				Direction: p.Direction,
				Read:      func() any { return name },
			})
		default:
			dest, size := outputDest(p)
			in := p.Direction == types.DirectionInputOutput
			if in {
				assignInitial(dest, p.Value)
			}
			st.Args = append(st.Args, sql.Named(name, go_ora.Out{Dest: dest, Size: size, In: in}))
			st.Outputs = append(st.Outputs, sqladapter.Output{
				Name:      p.Name,
				Direction: p.Direction,
				Read:      sqladapter.OutputReader(dest),
			})
		}

		if p.Direction == types.DirectionReturnValue {
			retParam = name
			continue
		}
		call = append(call, ":"+name)
	}

	switch {
	case cmd.IsProcedure():
		target := cmd.Text()
		if retParam != "" {
			target = ":" + retParam + " := " + target
		}
		st.Query = "BEGIN " + target + "(" + strings.Join(call, ", ") + "); END;"
		st.ExecOnly = true
	default:
		st.Query = cmd.Text()
		st.ExecOnly = len(st.Outputs) > 0
	}

	return st, nil
}

// FetchCursor drains the ref cursor bound under handle name.
func (d *Dialect) FetchCursor(_ context.Context, _ sqladapter.Querier, st *sqladapter.Statement, name string) (*types.Table, error) {
	if st == nil {
		return nil, types.ErrCursorNotFound
	}
	cursor, ok := st.Cursors[name].(*go_ora.RefCursor)
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrCursorNotFound, name)
	}

	dataset, err := cursor.Query()
	if err != nil {
		return nil, err
	}

	return drain(dataset)
}

// drain buffers every row of a driver-level row set and closes it.
func drain(rows driver.Rows) (*types.Table, error) {
	defer rows.Close()

	tbl := &types.Table{Columns: rows.Columns()}
	dest := make([]driver.Value, len(tbl.Columns))
	for {
		err := rows.Next(dest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make([]any, len(dest))
		for i, v := range dest {
			row[i] = v
		}
		tbl.Rows = append(tbl.Rows, row)
	}

	return tbl, nil
}

// Refiner returns the Oracle error refiner.
func (d *Dialect) Refiner() errmap.Refiner {
	return Refiner()
}

// outputDest allocates the typed destination and bind size for p.
func outputDest(p command.Parameter) (any, int) {
	size := p.Size
	t := p.Type

	switch {
	case t == types.Single || t == types.Double:
		return new(float64), 0
	case t == types.Decimal || t == types.Currency:
		return new(string), sizeOr(size, 64)
	case t.IsNumeric():
		// Boolean included: Oracle binds booleans as NUMBER(1).
		return new(int64), 0
	case t.IsTemporal() && t != types.Time && t != types.Interval:
		return new(time.Time), 0
	case t.IsBinary():
		return new([]byte), sizeOr(size, defaultBinarySize)
	default:
		return new(string), sizeOr(size, defaultStringSize)
	}
}

func sizeOr(size, def int) int {
	if size > 0 {
		return size
	}

	return def
}

func assignInitial(dest, value any) {
	if types.IsNull(value) {
		return
	}

	switch d := dest.(type) {
	case *float64:
		if v, ok := toType[float64](value, types.Double); ok {
			*d = v
		}
	case *int64:
		if v, ok := toType[int64](value, types.Int64); ok {
			*d = v
		}
	case *time.Time:
		if v, ok := toType[time.Time](value, types.DateTime); ok {
			*d = v
		}
	case *[]byte:
		if v, ok := value.([]byte); ok {
			*d = v
		}
	case *string:
		if v, ok := toType[string](value, types.String); ok {
			*d = v
		}
	}
}

func toType[T any](value any, t types.LogicalType) (T, bool) {
	v, ok := normalize.Value(value, t).(T)
	return v, ok
}
