package sqlexec

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
)

// Tx is a caller-managed transaction.
//
// A Tx is single use: Active moves to Committed, RolledBack or Disposed
// exactly once. Close without a prior Commit rolls the transaction back.
// Commands run through a Tx execute exactly once; the retry gate never
// repeats work inside a transaction it does not own.
//
// Example:
//
//	tx, err := exec.Begin(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Close()
//
//	if _, err := tx.ExecuteNonQuery(ctx, debit); err != nil {
//	    return err
//	}
//	if _, err := tx.ExecuteNonQuery(ctx, credit); err != nil {
//	    return err
//	}
//
//	return tx.Commit()
type Tx struct {
	engine *engine
	sess   adapter.TxSession
	state  atomic.Int32
	mu     sync.Mutex
}

func newTx(e *engine, sess adapter.TxSession) *Tx {
	t := &Tx{engine: e, sess: sess}
	t.state.Store(int32(types.TxActive))

	return t
}

// State returns the transaction state.
func (t *Tx) State() types.TxState {
	return types.TxState(t.state.Load())
}

func (t *Tx) do(ctx context.Context, c *call) (*types.Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State() != types.TxActive {
		return nil, types.ErrTxDone
	}
	c.tx = t.sess

	return t.engine.run(ctx, c)
}

// ExecuteNonQuery runs cmd inside the transaction without reading result sets.
func (t *Tx) ExecuteNonQuery(ctx context.Context, cmd *command.Command) (*types.Result, error) {
	return t.do(ctx, &call{cmd: cmd, nonQuery: true})
}

// ExecuteScalar runs cmd inside the transaction and returns the first column
// of the first row, or nil.
func (t *Tx) ExecuteScalar(ctx context.Context, cmd *command.Command) (any, error) {
	res, err := t.Query(ctx, cmd)
	if err != nil {
		return nil, err
	}

	return scalar(res), nil
}

// Query runs cmd inside the transaction and returns its first result table.
func (t *Tx) Query(ctx context.Context, cmd *command.Command) (*types.Result, error) {
	return t.do(ctx, &call{cmd: cmd, intent: types.IntentSingleTable})
}

// QueryMulti runs cmd inside the transaction and returns every result table.
func (t *Tx) QueryMulti(ctx context.Context, cmd *command.Command) (*types.Result, error) {
	return t.do(ctx, &call{cmd: cmd, intent: types.IntentAllTables})
}

// Stream runs cmd inside the transaction and calls fn for each row of its
// first result set. See Executor.Stream.
func (t *Tx) Stream(ctx context.Context, cmd *command.Command, fn func(types.Row) error) (*types.Result, error) {
	res, err := t.do(ctx, &call{cmd: cmd, intent: types.IntentSequential, rowFn: fn})
	if err != nil {
		return nil, err
	}
	res.Tables = nil

	return res, nil
}

// Commit commits the transaction.
//
// Returns:
//   - error: types.ErrTxDone if the transaction is no longer active,
//     otherwise nil or a *types.CanonicalError
func (t *Tx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.CompareAndSwap(int32(types.TxActive), int32(types.TxCommitted)) {
		return types.ErrTxDone
	}
	if err := t.sess.Commit(); err != nil {
		return t.engine.mapper.Map(err)
	}
	t.engine.config.Metrics.IncTxCommit(t.engine.caps.Backend)

	return nil
}

// Rollback rolls the transaction back.
//
// Returns:
//   - error: types.ErrTxDone if the transaction is no longer active,
//     otherwise nil or a *types.CanonicalError
func (t *Tx) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.CompareAndSwap(int32(types.TxActive), int32(types.TxRolledBack)) {
		return types.ErrTxDone
	}

	return t.rollback()
}

// Close disposes the transaction. An active transaction is rolled back and
// moves to Disposed; otherwise Close does nothing.
func (t *Tx) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.CompareAndSwap(int32(types.TxActive), int32(types.TxDisposed)) {
		return nil
	}
	t.engine.config.Logger.Info("sqlexec: transaction disposed without commit, rolling back",
		"backend", t.engine.caps.Backend.String(),
	)

	return t.rollback()
}

func (t *Tx) rollback() error {
	t.engine.config.Metrics.IncTxRollback(t.engine.caps.Backend)
	if err := t.sess.Rollback(); err != nil {
		return t.engine.mapper.Map(err)
	}

	return nil
}
