package sqlserver

import (
	"database/sql"
	"fmt"
	"time"

	sqladapter "github.com/arloliu/sqlexec/adapter/sql"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/normalize"
	"github.com/arloliu/sqlexec/types"
	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/google/uuid"
)

// DriverName is the database/sql driver used by the transport.
const DriverName = "sqlserver"

// Dialect binds commands for go-mssqldb.
type Dialect struct {
	sqladapter.BaseDialect
}

var _ sqladapter.Dialect = (*Dialect)(nil)

// NewDialect creates the SQL Server dialect.
func NewDialect() *Dialect {
	return &Dialect{BaseDialect: sqladapter.BaseDialect{Name: types.BackendSQLServer}}
}

// Bind builds the RPC call or batch for cmd.
//
// Parameter names lose their declared prefix; go-mssqldb adds '@' itself.
// A RefCursor parameter is rejected: SQL Server returns result sets directly.
func (d *Dialect) Bind(cmd *command.Command) (*sqladapter.Statement, error) {
	st := &sqladapter.Statement{Query: cmd.Text()}

	for i, p := range cmd.Parameters() {
		if p.Type == types.RefCursor {
			return nil, types.NewValidationError(types.FieldError{
				Field:   fmt.Sprintf("parameters[%d].type", i),
				Message: "ref cursors are not supported by sqlserver",
			})
		}

		name := p.StrippedName()
		switch p.Direction {
		case types.DirectionInput:
			st.Args = append(st.Args, sql.Named(name, sqladapter.ArgValue(p.Value)))
		case types.DirectionReturnValue:
			status := new(mssql.ReturnStatus)
			st.Args = append(st.Args, status)
			st.Outputs = append(st.Outputs, sqladapter.Output{
				Name:      p.Name,
				Direction: p.Direction,
				Read:      func() any { return int32(*status) },
			})
		default:
			dest, read := outputDest(p.Type)
			in := p.Direction == types.DirectionInputOutput
			if in {
				assignInitial(dest, p.Value)
			}
			st.Args = append(st.Args, sql.Named(name, sql.Out{Dest: dest, In: in}))
			st.Outputs = append(st.Outputs, sqladapter.Output{Name: p.Name, Direction: p.Direction, Read: read})
		}
	}

	return st, nil
}

// Refiner returns the SQL Server error refiner.
func (d *Dialect) Refiner() errmap.Refiner {
	return Refiner()
}

// outputDest allocates the typed destination for an output parameter and a
// reader reporting its value after execution.
func outputDest(t types.LogicalType) (any, func() any) {
	switch {
	case t == types.GUID:
		dest := new(mssql.UniqueIdentifier)
		return dest, func() any { return uuid.UUID(*dest).String() }
	case t == types.Boolean:
		dest := new(bool)
		return dest, sqladapter.OutputReader(dest)
	case t == types.Single || t == types.Double:
		dest := new(float64)
		return dest, sqladapter.OutputReader(dest)
	case t == types.Decimal || t == types.Currency:
		dest := new(string)
		return dest, sqladapter.OutputReader(dest)
	case t.IsNumeric():
		dest := new(int64)
		return dest, sqladapter.OutputReader(dest)
	case t.IsTemporal():
		dest := new(time.Time)
		return dest, sqladapter.OutputReader(dest)
	case t.IsBinary():
		dest := new([]byte)
		return dest, sqladapter.OutputReader(dest)
	default:
		dest := new(string)
		return dest, sqladapter.OutputReader(dest)
	}
}

// assignInitial seeds an InputOutput destination with the declared input value.
func assignInitial(dest, value any) {
	if types.IsNull(value) {
		return
	}

	switch d := dest.(type) {
	case *mssql.UniqueIdentifier:
		if v, ok := normalize.Value(value, types.GUID).(uuid.UUID); ok {
			*d = mssql.UniqueIdentifier(v)
		}
	case *bool:
		if v, ok := normalize.Value(value, types.Boolean).(bool); ok {
			*d = v
		}
	case *float64:
		if v, ok := normalize.Value(value, types.Double).(float64); ok {
			*d = v
		}
	case *int64:
		if v, ok := normalize.Value(value, types.Int64).(int64); ok {
			*d = v
		}
	case *time.Time:
		if v, ok := normalize.Value(value, types.DateTime2).(time.Time); ok {
			*d = v
		}
	case *[]byte:
		if v, ok := value.([]byte); ok {
			*d = v
		}
	case *string:
		if v, ok := normalize.Value(value, types.String).(string); ok {
			*d = v
		}
	}
}
