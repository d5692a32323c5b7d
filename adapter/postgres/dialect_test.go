package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/arloliu/sqlexec/adapter"
	sqladapter "github.com/arloliu/sqlexec/adapter/sql"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered(types.BackendPostgres))
}

func TestBindCall(t *testing.T) {
	cmd := command.Procedure("sales.get_orders",
		command.In(":p_customer", types.Int64, 42),
		command.RefCursor(":p_orders"),
		command.InOut(":p_count", types.Int32, 0),
		command.Out(":p_status", types.String),
	)

	st, err := NewDialect().Bind(cmd)
	require.NoError(t, err)

	assert.Equal(t, "CALL sales.get_orders($1, $2, $3, $4)", st.Query)
	assert.Equal(t, []any{42, nil, 0, nil}, st.Args)
	assert.True(t, st.OutputRow)
	assert.False(t, st.ExecOnly)

	executed := st.Executed([]any{"<unnamed portal 1>", int64(3), "ok"})
	require.Len(t, executed, 3)
	assert.Equal(t, types.ExecutedParameter{Name: ":p_orders", Direction: types.DirectionOutput, Value: "<unnamed portal 1>"}, executed[0])
	assert.Equal(t, types.ExecutedParameter{Name: ":p_count", Direction: types.DirectionInputOutput, Value: int64(3)}, executed[1])
	assert.Equal(t, "ok", executed[2].Value)
}

func TestBindCallWithoutOutputs(t *testing.T) {
	st, err := NewDialect().Bind(command.Procedure("audit.touch", command.In(":id", types.Int32, types.DBNull)))
	require.NoError(t, err)

	assert.Equal(t, "CALL audit.touch($1)", st.Query)
	assert.Equal(t, []any{nil}, st.Args)
	assert.True(t, st.ExecOnly)
	assert.False(t, st.OutputRow)
}

func TestBindCallRejectsReturnValue(t *testing.T) {
	_, err := NewDialect().Bind(command.Procedure("p", command.ReturnValue(":r", types.Int32)))
	ce, ok := types.AsCanonical(err)
	require.True(t, ok)
	assert.Equal(t, "parameters[0].direction", ce.Fields[0].Field)
}

func TestBindFunction(t *testing.T) {
	d := NewDialect(WithFunctionCalls())

	st, err := d.Bind(command.Procedure("calc_total",
		command.In(":a", types.Int32, 1),
		command.ReturnValue(":r", types.Decimal),
		command.In(":b", types.Int32, 2),
	))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM calc_total($1, $2)", st.Query)
	assert.Equal(t, []any{1, 2}, st.Args)
	assert.True(t, st.OutputRow)
	require.Len(t, st.Outputs, 1)

	st, err = d.Bind(command.Procedure("list_items", command.In(":a", types.Int32, 1)))
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM list_items($1)", st.Query)
	assert.False(t, st.OutputRow)
}

func TestBindText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		args  []any
	}{
		{
			name:  "positional",
			text:  "SELECT * FROM t WHERE a = $1 AND b = $2",
			query: "SELECT * FROM t WHERE a = $1 AND b = $2",
			args:  []any{1, "x"},
		},
		{
			name:  "named",
			text:  "SELECT * FROM t WHERE b = :b AND a = :A",
			query: "SELECT * FROM t WHERE b = $1 AND a = $2",
			args:  []any{"x", 1},
		},
		{
			name:  "repeated name and cast",
			text:  "SELECT :a::int, ':a', \"col:a\", :a -- :b\n",
			query: "SELECT $1::int, ':a', \"col:a\", $1 -- :b\n",
			args:  []any{1},
		},
		{
			name:  "unknown names are kept",
			text:  "SELECT :b, :zzz /* :a */",
			query: "SELECT $1, :zzz /* :a */",
			args:  []any{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := command.New(tt.text, command.In(":a", types.Int32, 1), command.In(":b", types.String, "x"))
			st, err := NewDialect().Bind(cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.query, st.Query)
			assert.Equal(t, tt.args, st.Args)
		})
	}
}

func TestBindTextRejectsOutputs(t *testing.T) {
	_, err := NewDialect().Bind(command.New("select 1", command.Out(":x", types.Int32)))
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestCursorRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	transport := sqladapter.New(db, NewDialect())
	defer transport.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("CALL get_data($1, $2, $3)").
		WithArgs(int64(7), nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"p_a", "p_b"}).AddRow("c_a", "c_b"))
	mock.ExpectQuery(`FETCH ALL IN "c_a"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectQuery(`FETCH ALL IN "c_b"`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("x"))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := transport.Begin(ctx)
	require.NoError(t, err)

	cmd := command.Procedure("get_data",
		command.In(":p_id", types.Int64, int64(7)),
		command.RefCursor(":p_a"),
		command.RefCursor(":p_b"),
	)
	fill, err := tx.Fill(ctx, cmd, true)
	require.NoError(t, err)
	assert.Empty(t, fill.Tables)
	require.Len(t, fill.Parameters, 2)

	a, err := tx.FetchCursor(ctx, fill.Parameters[0].Value.(string))
	require.NoError(t, err)
	assert.Equal(t, 2, a.Len())

	b, err := tx.FetchCursor(ctx, fill.Parameters[1].Value.(string))
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, b.Columns)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"<unnamed portal 1>"`, quoteIdent("<unnamed portal 1>"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestRefiner(t *testing.T) {
	m := errmap.New(NewDialect().Refiner())

	tests := []struct {
		err       error
		kind      types.ErrorKind
		transient bool
	}{
		{&pgconn.PgError{Code: "40P01", Message: "deadlock detected"}, types.KindDeadlock, true},
		{&pgconn.PgError{Code: "40001"}, types.KindConcurrency, true},
		{&pgconn.PgError{Code: "23505"}, types.KindConstraint, false},
		{&pgconn.PgError{Code: "08006"}, types.KindConnection, true},
		{&pgconn.PgError{Code: "42P01"}, types.KindNotFound, false},
		{&pgconn.PgError{Code: "42601"}, types.KindSyntax, false},
		{&pgconn.PgError{Code: "42804"}, types.KindSyntax, false},
		{&pgconn.PgError{Code: "22P02"}, types.KindValidation, false},
		{&pgconn.PgError{Code: "42501"}, types.KindPermission, false},
		{&pgconn.PgError{Code: "57014"}, types.KindTimeout, true},
		{&pgconn.PgError{Code: "P0001"}, types.KindUnknown, false},
		{fmt.Errorf("call: %w", &pq.Error{Code: "40P01"}), types.KindDeadlock, true},
		{&pq.Error{Code: "23503"}, types.KindConstraint, false},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			ce := m.Map(tt.err)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.transient, ce.Transient)
		})
	}
}
