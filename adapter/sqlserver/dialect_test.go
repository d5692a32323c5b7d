package sqlserver

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered(types.BackendSQLServer))
}

func TestBindProcedure(t *testing.T) {
	cmd := command.Procedure("dbo.transfer",
		command.In("@from", types.Int64, 10),
		command.In("@memo", types.String, types.DBNull),
		command.Out("@balance", types.Decimal),
		command.InOut("@attempts", types.Int32, 2),
		command.ReturnValue("@rc", types.Int32),
	)

	st, err := NewDialect().Bind(cmd)
	require.NoError(t, err)

	assert.Equal(t, "dbo.transfer", st.Query)
	assert.False(t, st.OutputRow)
	assert.False(t, st.ExecOnly)
	require.Len(t, st.Args, 5)

	assert.Equal(t, sql.Named("from", 10), st.Args[0])
	assert.Equal(t, sql.Named("memo", nil), st.Args[1])

	balance, ok := st.Args[2].(sql.NamedArg)
	require.True(t, ok)
	assert.Equal(t, "balance", balance.Name)
	out, ok := balance.Value.(sql.Out)
	require.True(t, ok)
	assert.False(t, out.In)
	_, ok = out.Dest.(*string)
	assert.True(t, ok)

	attempts := st.Args[3].(sql.NamedArg).Value.(sql.Out)
	assert.True(t, attempts.In)
	assert.Equal(t, int64(2), *attempts.Dest.(*int64))

	status, ok := st.Args[4].(*mssql.ReturnStatus)
	require.True(t, ok)

	// Simulate the driver writing outputs.
	*out.Dest.(*string) = "12.50"
	*attempts.Dest.(*int64) = 3
	*status = 7

	executed := st.Executed(nil)
	require.Len(t, executed, 3)
	assert.Equal(t, types.ExecutedParameter{Name: "@balance", Direction: types.DirectionOutput, Value: "12.50"}, executed[0])
	assert.Equal(t, int64(3), executed[1].Value)
	assert.Equal(t, types.ExecutedParameter{Name: "@rc", Direction: types.DirectionReturnValue, Value: int32(7)}, executed[2])
}

func TestBindOutputDestinations(t *testing.T) {
	tests := []struct {
		lt   types.LogicalType
		dest any
	}{
		{types.String, new(string)},
		{types.XML, new(string)},
		{types.Int16, new(int64)},
		{types.Boolean, new(bool)},
		{types.Double, new(float64)},
		{types.Currency, new(string)},
		{types.DateTimeOffset, new(time.Time)},
		{types.Time, new(time.Time)},
		{types.Binary, new([]byte)},
		{types.GUID, new(mssql.UniqueIdentifier)},
		{types.Object, new(string)},
	}

	for _, tt := range tests {
		t.Run(tt.lt.String(), func(t *testing.T) {
			st, err := NewDialect().Bind(command.Procedure("p", command.Out("@x", tt.lt)))
			require.NoError(t, err)
			out := st.Args[0].(sql.NamedArg).Value.(sql.Out)
			assert.IsType(t, tt.dest, out.Dest)
		})
	}
}

func TestBindGUIDOutputReadsAsString(t *testing.T) {
	id := uuid.MustParse("3fa85f64-5717-4562-b3fc-2c963f66afa6")
	st, err := NewDialect().Bind(command.Procedure("p", command.InOut("@id", types.GUID, id)))
	require.NoError(t, err)

	out := st.Args[0].(sql.NamedArg).Value.(sql.Out)
	assert.Equal(t, mssql.UniqueIdentifier(id), *out.Dest.(*mssql.UniqueIdentifier))
	assert.Equal(t, id.String(), st.Executed(nil)[0].Value)
}

func TestBindTextCommand(t *testing.T) {
	st, err := NewDialect().Bind(command.New("SELECT @a + 1", command.In("@a", types.Int32, 1)))
	require.NoError(t, err)
	assert.Equal(t, "SELECT @a + 1", st.Query)
	assert.Equal(t, []any{sql.Named("a", 1)}, st.Args)
	assert.Empty(t, st.Outputs)
}

func TestBindRejectsRefCursor(t *testing.T) {
	_, err := NewDialect().Bind(command.Procedure("p", command.RefCursor("@c")))
	ce, ok := types.AsCanonical(err)
	require.True(t, ok)
	assert.Equal(t, types.KindValidation, ce.Kind)
	assert.Equal(t, "parameters[0].type", ce.Fields[0].Field)
}

func TestRefiner(t *testing.T) {
	m := errmap.New(NewDialect().Refiner())

	tests := []struct {
		err       error
		kind      types.ErrorKind
		transient bool
		code      string
	}{
		{mssql.Error{Number: 1205, Message: "deadlock victim"}, types.KindDeadlock, true, "1205"},
		{fmt.Errorf("exec: %w", mssql.Error{Number: 2627}), types.KindConstraint, false, "2627"},
		{mssql.Error{Number: 208}, types.KindNotFound, false, "208"},
		{mssql.Error{Number: 40613}, types.KindConnection, true, "40613"},
		{mssql.Error{Number: 3960}, types.KindConcurrency, true, "3960"},
		{mssql.Error{Number: 229}, types.KindPermission, false, "229"},
		{mssql.Error{Number: 102}, types.KindSyntax, false, "102"},
		{mssql.Error{Number: 8152}, types.KindValidation, false, "8152"},
		{mssql.Error{Number: 50000}, types.KindUnknown, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ce := m.Map(tt.err)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.transient, ce.Transient)
			assert.Equal(t, tt.code, ce.Code)
		})
	}

	ce := m.Map(mssql.Error{Number: 1205, Message: "deadlock victim"})
	assert.Equal(t, []any{"deadlock victim"}, ce.MessageParams)
	assert.NotContains(t, ce.Error(), "deadlock victim")
}
