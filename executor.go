package sqlexec

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/internal/logging"
	"github.com/arloliu/sqlexec/internal/metrics"
	"github.com/arloliu/sqlexec/policy"
	"github.com/arloliu/sqlexec/types"
)

// Executor runs commands against one backend transport.
//
// An Executor is safe for concurrent use, but it serializes its own command
// calls: one command occupies the executor for its whole duration, retries
// included. Use several executors (or transactions) for parallel work.
type Executor struct {
	engine *engine
	mu     sync.Mutex
	closed atomic.Bool
}

// New creates an Executor over a transport.
//
// Parameters:
//   - transport: Backend transport (required)
//   - opts: Optional configuration options
//
// Returns:
//   - *Executor: A new executor
//   - error: types.ErrNilTransport if transport is nil, or
//     *types.UnknownBackendError if the transport reports an unsupported backend
func New(transport adapter.Transport, opts ...Option) (*Executor, error) {
	if transport == nil {
		return nil, types.ErrNilTransport
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	// Ensure metrics is never nil
	if config.Metrics == nil {
		config.Metrics = metrics.NewNopMetrics()
	}

	// Ensure logger is never nil
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}

	if config.Selector == nil {
		config.Selector = policy.NewCapabilitySelector()
	}
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = DefaultCommandTimeout
	}

	eng, err := newEngine(transport, config)
	if err != nil {
		return nil, err
	}

	return &Executor{engine: eng}, nil
}

// Open creates an Executor from settings, opening the transport registered
// for settings.Backend. The backend package must be imported:
//
//	import _ "github.com/arloliu/sqlexec/adapter/postgres"
//
// Options are applied after the options derived from settings.
//
// Parameters:
//   - ctx: Context for connecting
//   - settings: Loaded settings
//   - opts: Optional configuration options
//
// Returns:
//   - *Executor: A new executor
//   - error: Settings validation, registry or connection failure
func Open(ctx context.Context, settings *Settings, opts ...Option) (*Executor, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	options := append(settings.Options(), opts...)
	config := DefaultConfig()
	for _, opt := range options {
		opt(config)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	transport, err := adapter.Open(ctx, settings.Backend, settings.ConnectionString, logger)
	if err != nil {
		return nil, err
	}

	exec, err := New(transport, options...)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}

	return exec, nil
}

func (e *Executor) enter() (func(), error) {
	if e.closed.Load() {
		return nil, types.ErrExecutorClosed
	}
	e.mu.Lock()
	if e.closed.Load() {
		e.mu.Unlock()
		return nil, types.ErrExecutorClosed
	}

	return e.mu.Unlock, nil
}

func (e *Executor) do(ctx context.Context, c *call) (*types.Result, error) {
	unlock, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return e.engine.run(ctx, c)
}

// ExecuteNonQuery runs cmd without reading result sets.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cmd: The command
//
// Returns:
//   - *types.Result: RowsAffected, Outputs and ReturnValue
//   - error: *types.CanonicalError on failure
func (e *Executor) ExecuteNonQuery(ctx context.Context, cmd *command.Command) (*types.Result, error) {
	return e.do(ctx, &call{cmd: cmd, nonQuery: true})
}

// ExecuteScalar runs cmd and returns the first column of the first row, or
// nil when the result is empty.
func (e *Executor) ExecuteScalar(ctx context.Context, cmd *command.Command) (any, error) {
	res, err := e.Query(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return scalar(res), nil
}

// Query runs cmd and returns its first result table. Ref-cursor outputs are
// drained into additional tables in declaration order.
//
// Parameters:
//   - ctx: Context for cancellation (checked before the fill starts)
//   - cmd: The command
//
// Returns:
//   - *types.Result: The buffered result
//   - error: *types.CanonicalError on failure
func (e *Executor) Query(ctx context.Context, cmd *command.Command) (*types.Result, error) {
	return e.do(ctx, &call{cmd: cmd, intent: types.IntentSingleTable})
}

// QueryMulti runs cmd and returns every result table.
func (e *Executor) QueryMulti(ctx context.Context, cmd *command.Command) (*types.Result, error) {
	return e.do(ctx, &call{cmd: cmd, intent: types.IntentAllTables})
}

// Stream runs cmd and calls fn for each row of its first result set.
//
// On backends with streaming support rows are delivered as they are read and
// ctx is checked before and after each row; an attempt that already delivered
// rows is never retried. Elsewhere the result is buffered first and its rows
// delivered afterwards. An error returned by fn stops the stream and is
// returned unchanged. fn must not call back into the same Executor.
//
// Parameters:
//   - ctx: Context for cancellation
//   - cmd: The command
//   - fn: Row callback
//
// Returns:
//   - *types.Result: Outputs and the strategy used (no tables)
//   - error: *types.CanonicalError on failure, or the error from fn
func (e *Executor) Stream(ctx context.Context, cmd *command.Command, fn func(types.Row) error) (*types.Result, error) {
	res, err := e.do(ctx, &call{cmd: cmd, intent: types.IntentSequential, rowFn: fn})
	if err != nil {
		return nil, err
	}
	res.Tables = nil

	return res, nil
}

// Begin starts a caller-managed transaction. Commands run through the
// returned Tx are never retried.
//
// Parameters:
//   - ctx: Context for the transaction lifetime; canceling it rolls the transaction back
//
// Returns:
//   - *Tx: The transaction handle (state Active)
//   - error: *types.CanonicalError on failure
func (e *Executor) Begin(ctx context.Context) (*Tx, error) {
	unlock, err := e.enter()
	if err != nil {
		return nil, err
	}
	defer unlock()

	sess, err := e.engine.transport.Begin(ctx)
	if err != nil {
		return nil, e.engine.mapper.Map(err)
	}
	e.engine.config.Metrics.IncTxBegin(e.engine.caps.Backend)

	return newTx(e.engine, sess), nil
}

// NormalizeTableName applies the backend identifier casing to a table name
// handed to an external table operation.
func (e *Executor) NormalizeTableName(name string) string {
	return e.engine.caps.NormalizeTableName(name)
}

// Capabilities returns the backend capability facts.
func (e *Executor) Capabilities() capability.Capabilities {
	return e.engine.caps
}

// Backend returns the backend of the underlying transport.
func (e *Executor) Backend() types.Backend {
	return e.engine.caps.Backend
}

// Ping verifies the backend is reachable.
func (e *Executor) Ping(ctx context.Context) error {
	if e.closed.Load() {
		return types.ErrExecutorClosed
	}
	if err := e.engine.transport.Ping(ctx); err != nil {
		return e.engine.mapper.Map(err)
	}

	return nil
}

// Close closes the executor and its transport. Further calls fail with
// types.ErrExecutorClosed. Closing twice is a no-op.
func (e *Executor) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	// Wait for an in-flight command.
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.engine.transport.Close()
}

// Map runs cmd through q and maps every row of its first result set with fn.
//
// Example:
//
//	names, err := sqlexec.Map(ctx, exec, command.New("SELECT name FROM users"),
//		func(r types.Row) (string, error) {
//			v, _ := r.Get("name")
//			return normalize.Value(v, types.String).(string), nil
//		})
func Map[T any](ctx context.Context, q Querier, cmd *command.Command, fn func(types.Row) (T, error)) ([]T, error) {
	var out []T
	_, err := q.Stream(ctx, cmd, func(row types.Row) error {
		v, err := fn(row)
		if err != nil {
			return err
		}
		out = append(out, v)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func scalar(res *types.Result) any {
	tbl := res.Table(0)
	if tbl.Len() == 0 || len(tbl.Rows[0]) == 0 {
		return nil
	}

	v := tbl.Rows[0][0]
	if types.IsNull(v) {
		return nil
	}

	return v
}
