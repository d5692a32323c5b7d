// Package policy provides the execution policies of the sqlexec engine: the
// cursor classifier, the execution strategy selector and the retry gate.
//
// # Cursor Classifier
//
// PostgreSQL and Oracle return multiple result sets from stored procedures
// only through ref-cursor output parameters. [RequiresCursorHandling] reports
// when a command must be drained that way, and [CursorNames] collects the
// returned cursor handles in declaration order.
//
// # Strategy Selection
//
// Strategy selectors implement the StrategySelector interface:
//
//	type StrategySelector interface {
//	    Select(caps capability.Capabilities, cmd *command.Command, intent types.Intent) types.Strategy
//	}
//
// [CapabilitySelector] is the default. Its decision order is:
//
//  1. a backend that cannot stream never gets Streaming
//  2. cursor-shaped commands get BufferedMulti
//  3. sequential intent on a streaming backend gets Streaming
//  4. otherwise BufferedMulti for all-tables intent, BufferedSingle for the rest
//
// # Retry Gate
//
// [FixedDelayRetry] runs one attempt function at least once and at most
// MaxAttempts times, waiting a constant delay between attempts. Only failures
// the error mapper classifies as transient are retried. Commands running in a
// caller-managed transaction are never retried.
//
// Example:
//
//	gate := policy.NewFixedDelayRetry(types.RetryConfig{
//	    Enabled:     true,
//	    MaxAttempts: 3,
//	    Delay:       500 * time.Millisecond,
//	}, errmap.Default())
//
//	err := gate.Run(ctx, false, func(ctx context.Context, attempt int) error {
//	    return session.Exec(ctx, cmd)
//	})
package policy
