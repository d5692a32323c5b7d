package sqlexec

import (
	"context"
	"fmt"
	"time"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/extract"
	"github.com/arloliu/sqlexec/normalize"
	"github.com/arloliu/sqlexec/policy"
	"github.com/arloliu/sqlexec/types"
)

// engine runs commands against one transport. It is shared by an Executor
// and the transactions it begins.
type engine struct {
	transport adapter.Transport
	caps      capability.Capabilities
	config    *ExecutorConfig
	mapper    errmap.Mapper
	retry     *policy.FixedDelayRetry
}

// call describes one command invocation.
type call struct {
	cmd      *command.Command
	intent   types.Intent
	nonQuery bool

	// rowFn receives rows for Stream calls.
	rowFn func(types.Row) error

	// tx is the caller-managed transaction, nil outside one.
	tx adapter.TxSession
}

// attemptState is shared by the attempts of one call.
type attemptState struct {
	delivered int

	// rowErr is the error returned by the caller's row function, surfaced as is.
	rowErr error
}

func newEngine(transport adapter.Transport, cfg *ExecutorConfig) (*engine, error) {
	caps, err := capability.Resolve(transport.Backend())
	if err != nil {
		return nil, err
	}

	refiners := append([]errmap.Refiner{}, cfg.Refiners...)
	if r, ok := transport.(adapter.ErrorRefiner); ok {
		refiners = append(refiners, r.Refiner())
	}
	mapper := errmap.New(refiners...)

	return &engine{
		transport: transport,
		caps:      caps,
		config:    cfg,
		mapper:    mapper,
		retry: policy.NewFixedDelayRetry(cfg.Retry, mapper,
			policy.WithRetryLogger(cfg.Logger),
			policy.WithRetryMetrics(cfg.Metrics, caps.Backend),
		),
	}, nil
}

// run validates, selects a strategy and executes c through the retry gate.
func (e *engine) run(ctx context.Context, c *call) (*types.Result, error) {
	backend := e.caps.Backend
	if err := e.validate(c.cmd); err != nil {
		e.config.Metrics.IncCommandError(backend, types.KindValidation)
		return nil, err
	}

	strategy, cursor := e.selectStrategy(c)
	e.config.Logger.Debug("sqlexec: strategy selected",
		"backend", backend.String(),
		"strategy", strategy.String(),
		"intent", c.intent.String(),
		"cursor", cursor,
		"in_tx", c.tx != nil,
	)
	e.config.Metrics.IncCommandTotal(backend, strategy)

	start := time.Now()
	state := &attemptState{}
	res, err := policy.RunValue(ctx, e.retry, c.tx != nil, func(ctx context.Context, _ int) (*types.Result, error) {
		switch {
		case c.nonQuery:
			return e.execAttempt(ctx, c)
		case strategy == types.StrategyStreaming:
			return e.streamAttempt(ctx, c, state)
		default:
			return e.fillAttempt(ctx, c, strategy, cursor)
		}
	})
	e.config.Metrics.ObserveCommandDuration(backend, time.Since(start).Seconds())

	if state.rowErr != nil {
		return nil, state.rowErr
	}
	if err != nil {
		return nil, e.surface(err, c.cmd)
	}

	if c.rowFn != nil && strategy != types.StrategyStreaming {
		tbl := res.Table(0)
		for i := 0; i < tbl.Len(); i++ {
			if err := ctx.Err(); err != nil {
				return nil, e.surface(err, c.cmd)
			}
			if err := c.rowFn(tbl.Row(i)); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// surface records and logs a failure leaving the engine.
func (e *engine) surface(err error, cmd *command.Command) error {
	ce := e.mapper.Map(err)
	e.config.Metrics.IncCommandError(e.caps.Backend, ce.Kind)
	e.config.Logger.Error("sqlexec: command failed",
		"backend", e.caps.Backend.String(),
		"command", cmd.Text(),
		"kind", ce.Kind.String(),
		"code", ce.Code,
		"transient", ce.Transient,
	)

	return ce
}

func (e *engine) validate(cmd *command.Command) error {
	if cmd == nil {
		return types.NewValidationError(types.FieldError{Field: "command", Message: "must not be nil"})
	}
	if !e.config.ValidationEnabled {
		return cmd.ValidateStructure()
	}

	return cmd.Validate()
}

// selectStrategy asks the selector and then enforces what the backend can
// do: no streaming without streaming support, and cursor-returning commands
// are always drained as buffered tables.
func (e *engine) selectStrategy(c *call) (types.Strategy, bool) {
	cursor := policy.RequiresCursorHandling(e.caps, c.cmd)
	if c.nonQuery {
		return types.StrategyBufferedSingle, false
	}

	strategy := e.config.Selector.Select(e.caps, c.cmd, c.intent)
	if strategy == types.StrategyStreaming && (cursor || !e.caps.SupportsStreaming) {
		if cursor || c.intent == types.IntentAllTables {
			return types.StrategyBufferedMulti, cursor
		}

		return types.StrategyBufferedSingle, cursor
	}

	return strategy, cursor
}

func (e *engine) timeout(cmd *command.Command) time.Duration {
	if d := cmd.Timeout(); d > 0 {
		return d
	}

	return e.config.CommandTimeout
}

// session returns the session for one attempt and a function that finishes
// it. Inside a caller-managed transaction the transaction session is used as
// is. ownTx opens an engine-owned transaction that commits on success and
// rolls back on failure.
func (e *engine) session(ctx context.Context, c *call, ownTx bool) (adapter.Session, func(error) error, error) {
	if c.tx != nil {
		return c.tx, func(err error) error { return err }, nil
	}

	if ownTx {
		tx, err := e.transport.Begin(ctx)
		if err != nil {
			return nil, nil, err
		}

		return tx, func(err error) error {
			if err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					e.config.Logger.Warn("sqlexec: rollback of cursor transaction failed", "error", rbErr)
				}

				return err
			}

			return tx.Commit()
		}, nil
	}

	sess, err := e.transport.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}

	return sess, func(err error) error {
		if relErr := sess.Release(); relErr != nil {
			e.config.Logger.Warn("sqlexec: session release failed", "error", relErr)
		}

		return err
	}, nil
}

func (e *engine) execAttempt(ctx context.Context, c *call) (*types.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout(c.cmd))
	defer cancel()

	sess, done, err := e.session(ctx, c, false)
	if err != nil {
		return nil, err
	}

	out, err := sess.Exec(ctx, c.cmd)
	if err = done(err); err != nil {
		return nil, err
	}

	return e.result(c.cmd, out.Parameters, nil, out.RowsAffected, types.StrategyBufferedSingle), nil
}

// fillAttempt runs a buffered fill. Cancellation is honored only before the
// fill starts; once started, only the command timeout bounds it.
func (e *engine) fillAttempt(ctx context.Context, c *call, strategy types.Strategy, cursor bool) (*types.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout(c.cmd))
	defer cancel()

	sess, done, err := e.session(fillCtx, c, cursor && e.caps.CursorRequiresTransaction)
	if err != nil {
		return nil, err
	}

	res, err := e.fill(fillCtx, sess, c.cmd, strategy, cursor)
	if err = done(err); err != nil {
		return nil, err
	}

	return res, nil
}

func (e *engine) fill(ctx context.Context, sess adapter.Session, cmd *command.Command, strategy types.Strategy, cursor bool) (*types.Result, error) {
	out, err := sess.Fill(ctx, cmd, strategy == types.StrategyBufferedMulti)
	if err != nil {
		return nil, err
	}

	tables := out.Tables
	if strategy == types.StrategyBufferedSingle && len(tables) > 1 {
		tables = tables[:1]
	}

	if cursor {
		for _, name := range policy.CursorNames(out.Parameters, cmd) {
			tbl, err := sess.FetchCursor(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("fetch cursor %q: %w", name, err)
			}
			tables = append(tables, tbl)
		}
	}

	return e.result(cmd, out.Parameters, tables, out.RowsAffected, strategy), nil
}

// streamAttempt reads rows sequentially, checking for cancellation before and
// after each row. Once a row has been delivered the attempt is not retried.
func (e *engine) streamAttempt(ctx context.Context, c *call, state *attemptState) (*types.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(ctx, e.timeout(c.cmd))
	defer cancel()

	sess, done, err := e.session(qctx, c, false)
	if err != nil {
		return nil, err
	}

	res, err := e.stream(qctx, sess, c, state)
	if err = done(err); err != nil {
		return nil, err
	}

	return res, nil
}

func (e *engine) stream(ctx context.Context, sess adapter.Session, c *call, state *attemptState) (*types.Result, error) {
	rows, err := sess.Query(ctx, c.cmd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fail := func(err error) error {
		if state.delivered > 0 {
			return e.final(err)
		}

		return err
	}

	columns := rows.Columns()

	// A custom selector may stream a Query call; its rows are collected.
	var collected *types.Table
	deliver := c.rowFn
	if deliver == nil {
		collected = &types.Table{Columns: columns}
		deliver = func(row types.Row) error {
			collected.Rows = append(collected.Rows, append([]any(nil), row.Values()...))
			return nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, fail(err)
		}
		if !rows.Next() {
			break
		}

		if err := deliver(types.NewRow(columns, rows.Values())); err != nil {
			state.rowErr = err
			return nil, e.final(err)
		}
		state.delivered++
		e.config.Metrics.AddRowsStreamed(e.caps.Backend, 1)

		if err := ctx.Err(); err != nil {
			return nil, fail(err)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fail(err)
	}
	if err := rows.Close(); err != nil {
		return nil, fail(err)
	}

	var tables []*types.Table
	if collected != nil {
		tables = []*types.Table{collected}
	}

	return e.result(c.cmd, rows.Parameters(), tables, -1, types.StrategyStreaming), nil
}

// final maps err to a copy that the retry gate never retries. The mapper
// passes canonical and refined errors through with their own transience.
func (e *engine) final(err error) error {
	ce := *e.mapper.Map(err, errmap.WithTransient(false))
	ce.Transient = false

	return &ce
}

func (e *engine) result(cmd *command.Command, executed []types.ExecutedParameter, tables []*types.Table, affected int64, strategy types.Strategy) *types.Result {
	res := &types.Result{
		Tables:       tables,
		Outputs:      extract.Outputs(executed, cmd.Parameters()),
		RowsAffected: affected,
		Strategy:     strategy,
	}

	if v, ok := extract.ReturnValue(executed); ok {
		res.ReturnValue = v
		for _, p := range cmd.Parameters() {
			if p.Direction == types.DirectionReturnValue {
				res.ReturnValue = normalize.Value(v, p.Type)
				break
			}
		}
	}

	return res
}
