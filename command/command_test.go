package command

import (
	"testing"
	"time"

	"github.com/arloliu/sqlexec/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{":p_customer_id", "p_customer_id"},
		{"@Amount", "Amount"},
		{"?id", "id"},
		{"amount", "amount"},
		{"::double", ":double"},
		{"@@rowcount", "@rowcount"},
		{"", ""},
		{"$1", "$1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripPrefix(tt.in))
		})
	}
}

func TestEqualNames(t *testing.T) {
	assert.True(t, EqualNames(":P_ID", "@p_id"))
	assert.True(t, EqualNames("p_id", "?P_Id"))
	assert.False(t, EqualNames("p_id", "p_id2"))
	assert.False(t, EqualNames("::p", ":p"))
}

func TestBuilders(t *testing.T) {
	cmd := Procedure("pkg.get_customer",
		In(":p_id", types.Int64, 7),
		RefCursor(":p_cursor"),
		OutSized(":p_name", types.String, 100),
		InOut(":p_counter", types.Int32, 1),
		ReturnValue("@ret", types.Int32),
		WithTimeout(5*time.Second),
	)

	assert.Equal(t, "pkg.get_customer", cmd.Text())
	assert.Equal(t, types.KindStoredProcedure, cmd.Kind())
	assert.True(t, cmd.IsProcedure())
	assert.True(t, cmd.HasRefCursor())
	assert.Equal(t, 5*time.Second, cmd.Timeout())
	require.Equal(t, 5, cmd.Len())

	p, ok := cmd.Lookup("P_CURSOR")
	require.True(t, ok)
	assert.Equal(t, types.RefCursor, p.Type)
	assert.Equal(t, types.DirectionOutput, p.Direction)
	assert.Equal(t, "p_cursor", p.StrippedName())

	name, ok := cmd.Lookup("@p_name")
	require.True(t, ok)
	assert.Equal(t, 100, name.Size)

	_, ok = cmd.Lookup("missing")
	assert.False(t, ok)
}

func TestParametersIsACopy(t *testing.T) {
	cmd := New("select 1", In("@a", types.Int32, 1))

	params := cmd.Parameters()
	params[0].Value = 99

	assert.Equal(t, 1, cmd.Parameter(0).Value)
	assert.Nil(t, New("select 1").Parameters())
}

func TestNegativeTimeoutMeansDefault(t *testing.T) {
	cmd := New("select 1", WithTimeout(-time.Second))
	assert.Zero(t, cmd.Timeout())
}

func TestValidateStructure(t *testing.T) {
	require.NoError(t, New("select 1", In("@a", types.Int32, 1)).ValidateStructure())

	err := New("  ").ValidateStructure()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrValidation)

	err = New("select :a",
		In(":a", types.Int32, 1),
		In("@A", types.Int32, 2),
	).ValidateStructure()
	require.Error(t, err)

	ce, ok := types.AsCanonical(err)
	require.True(t, ok)
	require.Len(t, ce.Fields, 1)
	assert.Equal(t, "parameters[1].name", ce.Fields[0].Field)
	assert.False(t, ce.Transient)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		cmd    *Command
		fields []string
	}{
		{
			name: "valid procedure",
			cmd:  Procedure("p", In(":a", types.Int32, 1), RefCursor(":c")),
		},
		{
			name:   "empty parameter name",
			cmd:    New("select 1", In("@", types.Int32, 1)),
			fields: []string{"parameters[0].name"},
		},
		{
			name:   "negative size",
			cmd:    Procedure("p", WithParameter(Parameter{Name: "x", Direction: types.DirectionOutput, Size: -1})),
			fields: []string{"parameters[0].size"},
		},
		{
			name:   "input ref cursor",
			cmd:    Procedure("p", In(":c", types.RefCursor, nil)),
			fields: []string{"parameters[0].direction"},
		},
		{
			name:   "ref cursor on text",
			cmd:    New("select 1", RefCursor(":c")),
			fields: []string{"parameters[0].type"},
		},
		{
			name:   "two return values",
			cmd:    Procedure("p", ReturnValue("@r1", types.Int32), ReturnValue("@r2", types.Int32)),
			fields: []string{"parameters[1].direction"},
		},
		{
			name:   "every problem reported",
			cmd:    New("", In(":c", types.RefCursor, nil)),
			fields: []string{"text", "parameters[0].direction", "parameters[0].type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}

			ce, ok := types.AsCanonical(err)
			require.True(t, ok)
			assert.Equal(t, types.KindValidation, ce.Kind)

			got := make([]string, len(ce.Fields))
			for i, f := range ce.Fields {
				got[i] = f.Field
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}
