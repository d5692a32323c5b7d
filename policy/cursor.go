package policy

import (
	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
)

// RequiresCursorHandling reports whether cmd must be executed with cursor-based
// multi-result handling on a backend.
//
// True iff cmd is a stored-procedure call, the backend returns multiple result
// sets only through cursors, and at least one declared parameter is a ref cursor.
//
// Parameters:
//   - caps: Backend capabilities
//   - cmd: The command to classify
//
// Returns:
//   - bool: true if ref cursors must be drained as result tables
func RequiresCursorHandling(caps capability.Capabilities, cmd *command.Command) bool {
	if cmd == nil || cmd.Kind() != types.KindStoredProcedure || !caps.MultiResultRequiresCursor {
		return false
	}

	return cmd.HasRefCursor()
}

// CursorNames returns the cursor handles reported by the backend, in parameter
// declaration order.
//
// A handle is a non-empty string value on an Output or InputOutput executed
// parameter whose declaration is a ref cursor.
func CursorNames(executed []types.ExecutedParameter, cmd *command.Command) []string {
	if cmd == nil || len(executed) == 0 {
		return nil
	}

	var names []string
	for _, decl := range cmd.Parameters() {
		if decl.Type != types.RefCursor {
			continue
		}
		for _, ep := range executed {
			if !ep.Direction.IsOutput() || !command.EqualNames(ep.Name, decl.Name) {
				continue
			}
			if s, ok := ep.Value.(string); ok && s != "" {
				names = append(names, s)
			}

			break
		}
	}

	return names
}
