package policy

import (
	"testing"

	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sqlServer = capability.MustResolve(types.BackendSQLServer)
	postgres  = capability.MustResolve(types.BackendPostgres)
	oracle    = capability.MustResolve(types.BackendOracle)
)

func allIntents() []types.Intent {
	return []types.Intent{types.IntentSingleTable, types.IntentAllTables, types.IntentSequential}
}

func TestRequiresCursorHandling(t *testing.T) {
	cursorProc := command.Procedure("pkg.get_customer",
		command.In(":p_id", types.Int64, 1),
		command.RefCursor(":p_customer_cursor"),
	)
	plainProc := command.Procedure("pkg.touch", command.In(":p_id", types.Int64, 1))
	text := command.New("select * from customers", command.In(":p_id", types.Int64, 1))

	tests := []struct {
		name string
		caps capability.Capabilities
		cmd  *command.Command
		want bool
	}{
		{"oracle cursor procedure", oracle, cursorProc, true},
		{"postgres cursor procedure", postgres, cursorProc, true},
		{"sqlserver cursor procedure", sqlServer, cursorProc, false},
		{"oracle plain procedure", oracle, plainProc, false},
		{"oracle text", oracle, text, false},
		{"postgres text", postgres, text, false},
		{"nil command", oracle, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RequiresCursorHandling(tt.caps, tt.cmd))
		})
	}
}

func TestCursorNamesInDeclarationOrder(t *testing.T) {
	cmd := command.Procedure("pkg.report",
		command.RefCursor(":p_first"),
		command.Out(":p_count", types.Int32),
		command.RefCursor(":p_second"),
		command.RefCursor(":p_empty"),
	)

	// Provider reports parameters in a different order and casing.
	executed := []types.ExecutedParameter{
		{Name: "P_SECOND", Direction: types.DirectionOutput, Value: "C_2"},
		{Name: "p_count", Direction: types.DirectionOutput, Value: int32(2)},
		{Name: ":p_empty", Direction: types.DirectionOutput, Value: ""},
		{Name: "@p_first", Direction: types.DirectionOutput, Value: "C_1"},
	}

	assert.Equal(t, []string{"C_1", "C_2"}, CursorNames(executed, cmd))
	assert.Nil(t, CursorNames(nil, cmd))
}

func TestCursorNamesIgnoresInputDirection(t *testing.T) {
	cmd := command.Procedure("p", command.RefCursor(":c"))
	executed := []types.ExecutedParameter{{Name: ":c", Direction: types.DirectionInput, Value: "C_1"}}

	assert.Empty(t, CursorNames(executed, cmd))
}

func TestSelectorStreamingDeniedOnOracle(t *testing.T) {
	s := NewCapabilitySelector()
	cmds := []*command.Command{
		command.New("select 1 from dual"),
		command.Procedure("p", command.In(":a", types.Int32, 1)),
		command.Procedure("p", command.RefCursor(":c")),
	}

	for _, cmd := range cmds {
		for _, intent := range allIntents() {
			require.NotEqual(t, types.StrategyStreaming, s.Select(oracle, cmd, intent),
				"cmd %q intent %s", cmd.Text(), intent)
		}
	}
}

func TestSelectorDecisionOrder(t *testing.T) {
	s := NewCapabilitySelector()
	text := command.New("select * from t")
	cursorProc := command.Procedure("p", command.RefCursor(":c"))

	tests := []struct {
		name   string
		caps   capability.Capabilities
		cmd    *command.Command
		intent types.Intent
		want   types.Strategy
	}{
		{"sqlserver sequential streams", sqlServer, text, types.IntentSequential, types.StrategyStreaming},
		{"postgres sequential streams", postgres, text, types.IntentSequential, types.StrategyStreaming},
		{"oracle sequential buffers single", oracle, text, types.IntentSequential, types.StrategyBufferedSingle},
		{"single table", sqlServer, text, types.IntentSingleTable, types.StrategyBufferedSingle},
		{"all tables", sqlServer, text, types.IntentAllTables, types.StrategyBufferedMulti},
		{"oracle all tables", oracle, text, types.IntentAllTables, types.StrategyBufferedMulti},
		{"cursor dominates sequential on postgres", postgres, cursorProc, types.IntentSequential, types.StrategyBufferedMulti},
		{"cursor dominates single on oracle", oracle, cursorProc, types.IntentSingleTable, types.StrategyBufferedMulti},
		{"sqlserver cursor param is not cursor-shaped", sqlServer, cursorProc, types.IntentSequential, types.StrategyStreaming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Select(tt.caps, tt.cmd, tt.intent))
		})
	}
}

func TestOracleCursorScenario(t *testing.T) {
	cmd := command.Procedure("pkg_customers.get_customer",
		command.In(":p_customer_id", types.Int64, 42),
		command.RefCursor(":p_customer_cursor"),
	)

	require.Equal(t, types.StrategyBufferedMulti, NewCapabilitySelector().Select(oracle, cmd, types.IntentSingleTable))

	names := CursorNames([]types.ExecutedParameter{
		{Name: ":p_customer_id", Direction: types.DirectionInput, Value: int64(42)},
		{Name: ":p_customer_cursor", Direction: types.DirectionOutput, Value: "p_customer_cursor"},
	}, cmd)
	require.Equal(t, []string{"p_customer_cursor"}, names)
}
