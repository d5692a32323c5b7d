package policy

import (
	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
)

// CapabilitySelector picks an execution strategy from backend capabilities,
// command shape and caller intent. The choice is made once per command.
//
// Capability dominates intent: a caller cannot force streaming on a backend
// that does not support it. Cursor shape dominates plain intent: cursors are
// invisible to a sequential reader and must be drained as tables.
type CapabilitySelector struct{}

// NewCapabilitySelector creates the default strategy selector.
func NewCapabilitySelector() *CapabilitySelector {
	return &CapabilitySelector{}
}

// Select returns the strategy for cmd.
//
// Parameters:
//   - caps: Backend capabilities
//   - cmd: The command to run
//   - intent: The result shape requested by the caller
//
// Returns:
//   - types.Strategy: The chosen strategy
func (s *CapabilitySelector) Select(caps capability.Capabilities, cmd *command.Command, intent types.Intent) types.Strategy {
	if RequiresCursorHandling(caps, cmd) {
		return types.StrategyBufferedMulti
	}

	if intent == types.IntentSequential && caps.SupportsStreaming {
		return types.StrategyStreaming
	}

	if intent == types.IntentAllTables {
		return types.StrategyBufferedMulti
	}

	return types.StrategyBufferedSingle
}
