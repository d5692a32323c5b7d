package types

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in   string
		want Backend
	}{
		{"sqlserver", BackendSQLServer},
		{"MSSQL", BackendSQLServer},
		{"postgres", BackendPostgres},
		{" PostgreSQL ", BackendPostgres},
		{"pgx", BackendPostgres},
		{"Oracle", BackendOracle},
		{"ora", BackendOracle},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseBackend("mysql")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	var ube *UnknownBackendError
	require.ErrorAs(t, err, &ube)
	assert.Equal(t, "mysql", ube.Name)
}

func TestLogicalTypeFamilies(t *testing.T) {
	assert.True(t, JSON.IsText())
	assert.True(t, NClob.IsText())
	assert.False(t, Int32.IsText())

	assert.True(t, Currency.IsNumeric())
	assert.True(t, Boolean.IsNumeric())
	assert.False(t, GUID.IsNumeric())

	assert.True(t, DateTimeOffset.IsTemporal())
	assert.True(t, Interval.IsTemporal())
	assert.False(t, Timestamp.IsTemporal(), "timestamp is a row version")
	assert.True(t, Timestamp.IsBinary())
}

func TestParseLogicalType(t *testing.T) {
	for i := String; i <= Object; i++ {
		got, ok := ParseLogicalType(i.String())
		require.True(t, ok, i.String())
		assert.Equal(t, i, got)
	}

	got, ok := ParseLogicalType("DATE_TIME_OFFSET")
	assert.False(t, ok)
	assert.Equal(t, Object, got)

	got, ok = ParseLogicalType("ANSI_STRING")
	assert.True(t, ok)
	assert.Equal(t, AnsiString, got)
}

func TestDirection(t *testing.T) {
	assert.True(t, DirectionOutput.IsOutput())
	assert.True(t, DirectionInputOutput.IsOutput())
	assert.False(t, DirectionInput.IsOutput())
	assert.False(t, DirectionReturnValue.IsOutput())

	d, ok := ParseDirection("InOut")
	assert.True(t, ok)
	assert.Equal(t, DirectionInputOutput, d)

	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}

func TestCanonicalErrorUnwrapsToKindOnly(t *testing.T) {
	ce := NewCanonicalError(KindDeadlock, true, "victim")
	ce.Code = "1205"

	assert.ErrorIs(t, ce, ErrDeadlock)
	assert.NotErrorIs(t, ce, ErrTimeout)
	assert.Equal(t, "sqlexec.error.deadlock", ce.MessageKey)
	assert.Equal(t, "sqlexec: deadlock (code 1205): victim", ce.Error())
	assert.True(t, IsTransient(ce))

	wrapped := errors.Join(errors.New("outer"), ce)
	got, ok := AsCanonical(wrapped)
	require.True(t, ok)
	assert.Same(t, ce, got)
}

func TestNewValidationError(t *testing.T) {
	ce := NewValidationError(
		FieldError{Field: "text", Message: "must not be empty"},
		FieldError{Field: "parameters[1].name", Message: "duplicate name \"id\""},
	)

	assert.Equal(t, KindValidation, ce.Kind)
	assert.False(t, ce.Transient)
	assert.Len(t, ce.MessageParams, 2)
	assert.ErrorIs(t, ce, ErrValidation)
	assert.Contains(t, ce.Error(), "text: must not be empty")
}

func TestDiagnosticIdentity(t *testing.T) {
	assert.Equal(t, "", DiagnosticIdentity(nil))
	assert.Equal(t, "*github.com/arloliu/sqlexec/types.CanonicalError",
		DiagnosticIdentity(&CanonicalError{}))
	assert.Equal(t, "*errors.errorString", DiagnosticIdentity(errors.New("x")))
	assert.NotEmpty(t, DiagnosticIdentity(context.Canceled))
}

func TestTableAndRow(t *testing.T) {
	tbl := &Table{
		Columns: []string{"ID", "Name"},
		Rows:    [][]any{{int64(1), "alice"}, {int64(2), nil}},
	}

	assert.Equal(t, 2, tbl.Len())
	row, err := tbl.First()
	require.NoError(t, err)

	v, ok := row.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "alice", v)

	_, ok = row.Get("missing")
	assert.False(t, ok)

	var empty *Table
	_, err = empty.First()
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestResultOutput(t *testing.T) {
	res := &Result{Outputs: map[string]any{"p_total": 42}}

	v, ok := res.Output(":P_TOTAL")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = res.Output("p_other")
	assert.False(t, ok)
	assert.Nil(t, res.Table(0))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(DBNull))
	assert.False(t, IsNull(0))
}
