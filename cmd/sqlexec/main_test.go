package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/test/testutil"
	"github.com/arloliu/sqlexec/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		raw  string
		want command.Parameter
	}{
		{"in:@id:int32=7", command.Parameter{Name: "@id", Type: types.Int32, Direction: types.DirectionInput, Value: int32(7)}},
		{"in:name=alice", command.Parameter{Name: "name", Type: types.String, Direction: types.DirectionInput, Value: "alice"}},
		{"in:note:string=null", command.Parameter{Name: "note", Type: types.String, Direction: types.DirectionInput}},
		{"in:at:datetime=2024-01-15 13:45:30", command.Parameter{
			Name: "at", Type: types.DateTime, Direction: types.DirectionInput,
			Value: time.Date(2024, 1, 15, 13, 45, 30, 0, time.UTC),
		}},
		{"out:@total:decimal", command.Parameter{Name: "@total", Type: types.Decimal, Direction: types.DirectionOutput}},
		{"out:msg:string:200", command.Parameter{Name: "msg", Type: types.String, Direction: types.DirectionOutput, Size: 200}},
		{"inout:n:int64=1", command.Parameter{Name: "n", Type: types.Int64, Direction: types.DirectionInputOutput, Value: int64(1)}},
		{"in:blob:binary=0xCAFE", command.Parameter{Name: "blob", Type: types.Binary, Direction: types.DirectionInput, Value: []byte{0xca, 0xfe}}},
		{"cursor:p_rows", command.Parameter{Name: "p_rows", Type: types.RefCursor, Direction: types.DirectionOutput}},
		{"return:@rc:int32", command.Parameter{Name: "@rc", Type: types.Int32, Direction: types.DirectionReturnValue}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			opt, err := parseParam(tt.raw)
			require.NoError(t, err)

			c := command.New("x", opt)
			require.Equal(t, 1, c.Len())
			got := c.Parameter(0)
			if want, ok := tt.want.Value.(time.Time); ok {
				assert.True(t, want.Equal(got.Value.(time.Time)))
				got.Value, tt.want.Value = nil, nil
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseParamErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"in",
		"in:",
		"in:=1",
		"in:id",
		"in:id:nosuchtype=1",
		"in:id:int32=abc",
		"out:id",
		"out:id:string:big",
		"inout:id=1",
		"return:rc",
		"sideways:id:int32",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := parseParam(raw)
			assert.Error(t, err)
		})
	}
}

func TestCommandOptionsBuild(t *testing.T) {
	o := commandOptions{
		params:    []string{"in:a:int32=1", "cursor:c"},
		procedure: true,
		timeout:   3 * time.Second,
	}

	c, err := o.build("pkg.proc")
	require.NoError(t, err)
	assert.True(t, c.IsProcedure())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3*time.Second, c.Timeout())
	assert.True(t, c.HasRefCursor())

	o.params = append(o.params, "bogus")
	_, err = o.build("pkg.proc")
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "NULL"},
		{types.DBNull, "NULL"},
		{[]byte{0xca, 0xfe}, "0xcafe"},
		{int32(7), "7"},
		{decimal.RequireFromString("12.50"), "12.5"},
		{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "2024-01-15T00:00:00Z"},
		{"text", "text"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.in))
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, testutil.Table([]string{"id", "name"},
		[]any{int64(1), "alice"},
		[]any{int64(2), nil},
	))

	out := buf.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")

	buf.Reset()
	renderTable(&buf, testutil.Table([]string{"id"}))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	res := &types.Result{
		Tables:       []*types.Table{testutil.Table([]string{"n"}, []any{int64(1)})},
		Outputs:      map[string]any{"total": decimal.RequireFromString("3.5")},
		ReturnValue:  int32(0),
		RowsAffected: 4,
		Strategy:     types.StrategyBufferedMulti,
	}

	var buf bytes.Buffer
	require.NoError(t, renderJSON(&buf, res, true))

	var got jsonResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "buffered-multi", got.Strategy)
	require.NotNil(t, got.RowsAffected)
	assert.Equal(t, int64(4), *got.RowsAffected)
	assert.Equal(t, []jsonTable{{Columns: []string{"n"}, Rows: [][]string{{"1"}}}}, got.Tables)
	assert.Equal(t, map[string]string{"total": "3.5"}, got.Outputs)
	require.NotNil(t, got.ReturnValue)
	assert.Equal(t, "0", *got.ReturnValue)
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

// fakeOracle registers a fake transport as the oracle backend.
func fakeOracle(t *testing.T) *testutil.FakeTransport {
	t.Helper()

	transport := testutil.NewFakeTransport(types.BackendOracle)
	adapter.Register(types.BackendOracle, func(context.Context, string, types.Logger) (adapter.Transport, error) {
		return transport, nil
	})

	return transport
}

func TestBackendsCommand(t *testing.T) {
	out, err := runCLI(t, "backends")
	require.NoError(t, err)

	for _, b := range types.Backends() {
		assert.Contains(t, out, b.String())
	}
	assert.Contains(t, out, "(3 backends)")
}

func TestQueryCommand(t *testing.T) {
	transport := fakeOracle(t)
	var gotCmd *command.Command
	transport.OnFill = func(_ context.Context, cmd *command.Command, _ bool) (*adapter.FillResult, error) {
		gotCmd = cmd
		return &adapter.FillResult{
			Tables:       []*types.Table{testutil.Table([]string{"ID", "NAME"}, []any{int64(7), "alice"})},
			RowsAffected: -1,
		}, nil
	}

	out, err := runCLI(t, "query", "--backend", "oracle", "--dsn", "oracle://u:p@db/XE",
		"SELECT id, name FROM users WHERE id = :id", "-p", "in:id:int32=7")
	require.NoError(t, err)

	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "(1 rows)")
	require.NotNil(t, gotCmd)
	assert.Equal(t, int32(7), gotCmd.Parameter(0).Value)
	assert.True(t, transport.Closed())
}

func TestQueryCommandStreamFallsBackToBuffered(t *testing.T) {
	transport := fakeOracle(t)
	transport.OnFill = func(context.Context, *command.Command, bool) (*adapter.FillResult, error) {
		return &adapter.FillResult{
			Tables:       []*types.Table{testutil.Table([]string{"N"}, []any{int64(1)}, []any{int64(2)})},
			RowsAffected: -1,
		}, nil
	}

	out, err := runCLI(t, "query", "--stream", "--backend", "oracle", "--dsn", "x", "SELECT n FROM t")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 rows, buffered-single)")
}

func TestQueryCommandRejectsBadInput(t *testing.T) {
	fakeOracle(t)

	_, err := runCLI(t, "query", "--backend", "oracle", "--dsn", "x", "--multi", "--stream", "SELECT 1 FROM dual")
	assert.Error(t, err)

	_, err = runCLI(t, "query", "--backend", "oracle", "--dsn", "x", "-f", "xml", "SELECT 1 FROM dual")
	assert.Error(t, err)

	_, err = runCLI(t, "query", "--backend", "oracle", "SELECT 1 FROM dual")
	assert.ErrorIs(t, err, types.ErrValidation, "missing connection string")
}

func TestExecCommand(t *testing.T) {
	transport := fakeOracle(t)
	transport.OnExec = func(context.Context, *command.Command) (*adapter.ExecResult, error) {
		return &adapter.ExecResult{
			RowsAffected: 3,
			Parameters: []types.ExecutedParameter{
				{Name: "total", Direction: types.DirectionOutput, Value: "12.50"},
			},
		}, nil
	}

	out, err := runCLI(t, "exec", "--backend", "oracle", "--dsn", "x",
		"--proc", "pkg_orders.close", "-p", "in:id:int64=5", "-p", "out:total:decimal")
	require.NoError(t, err)

	assert.Contains(t, out, "OK, 3 rows affected")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "12.5")
}
