// Package extract harvests output parameter values after execution.
package extract

import (
	"strings"

	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/normalize"
	"github.com/arloliu/sqlexec/types"
)

// Outputs builds the output-value mapping from the provider's executed
// parameters.
//
// Only Output and InputOutput parameters are surfaced. Ref-cursor parameters
// are skipped; their cursors become result tables instead. Values of declared
// parameters are normalized to the declared logical type; undeclared values
// are kept raw with the null sentinel collapsed to nil. Keys are
// prefix-stripped names as reported by the provider.
//
// Parameters:
//   - executed: Provider-side parameter state after execution
//   - declared: The command's declared parameters
//
// Returns:
//   - map[string]any: Output values, or nil when either side is empty
func Outputs(executed []types.ExecutedParameter, declared []command.Parameter) map[string]any {
	if len(executed) == 0 || len(declared) == 0 {
		return nil
	}

	lookup := make(map[string]command.Parameter, len(declared))
	for _, p := range declared {
		key := strings.ToLower(p.StrippedName())
		if _, dup := lookup[key]; !dup {
			lookup[key] = p
		}
	}

	out := make(map[string]any)
	for _, ep := range executed {
		if !ep.Direction.IsOutput() {
			continue
		}

		name := command.StripPrefix(ep.Name)
		decl, ok := lookup[strings.ToLower(name)]
		if ok && decl.Type == types.RefCursor {
			continue
		}

		if ok {
			out[name] = normalize.Value(ep.Value, decl.Type)
		} else if types.IsNull(ep.Value) {
			out[name] = nil
		} else {
			out[name] = ep.Value
		}
	}

	return out
}

// ReturnValue returns the raw value of the return-value parameter, if the
// provider reported one. The null sentinel is collapsed to nil.
func ReturnValue(executed []types.ExecutedParameter) (any, bool) {
	for _, ep := range executed {
		if ep.Direction != types.DirectionReturnValue {
			continue
		}
		if types.IsNull(ep.Value) {
			return nil, true
		}

		return ep.Value, true
	}

	return nil, false
}
