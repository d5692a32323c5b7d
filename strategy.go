package sqlexec

import (
	"context"

	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
)

// StrategySelector chooses how a command is executed.
//
// Implementations MUST be safe for concurrent use from multiple goroutines
// and must be pure: the choice is made once per command and never revisited.
type StrategySelector interface {
	// Select chooses the execution strategy.
	//
	// Parameters:
	//   - caps: Capabilities of the target backend
	//   - cmd: The command to execute
	//   - intent: The result shape requested by the caller
	//
	// Returns:
	//   - types.Strategy: The strategy to execute with
	Select(caps capability.Capabilities, cmd *command.Command, intent types.Intent) types.Strategy
}

// Querier is the query surface shared by Executor and Tx.
type Querier interface {
	// Query runs cmd and returns its first result table.
	Query(ctx context.Context, cmd *command.Command) (*types.Result, error)

	// Stream runs cmd and hands every row of its first result set to fn.
	Stream(ctx context.Context, cmd *command.Command, fn func(types.Row) error) (*types.Result, error)
}

// Compile-time assertions that Executor and Tx are Queriers.
var (
	_ Querier = (*Executor)(nil)
	_ Querier = (*Tx)(nil)
)
