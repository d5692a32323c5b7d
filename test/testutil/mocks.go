package testutil

import (
	"context"
	"sync"

	"github.com/arloliu/sqlexec/adapter"
	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/types"
)

// FakeTransport is a scripted adapter.Transport for testing.
//
// Every session operation is answered by the matching hook. A nil hook
// returns an empty result. The transport records how often each operation ran.
type FakeTransport struct {
	mu     sync.Mutex
	closed bool
	counts map[string]int

	backend types.Backend

	// Hooks for custom behavior
	OnExec        func(ctx context.Context, cmd *command.Command) (*adapter.ExecResult, error)
	OnQuery       func(ctx context.Context, cmd *command.Command) (adapter.Rows, error)
	OnFill        func(ctx context.Context, cmd *command.Command, all bool) (*adapter.FillResult, error)
	OnFetchCursor func(ctx context.Context, name string) (*types.Table, error)
	OnAcquire     func(ctx context.Context) error
	OnBegin       func(ctx context.Context) error
	OnCommit      func() error
	OnPing        func(ctx context.Context) error

	// ErrorRefiner, when set, is reported through adapter.ErrorRefiner.
	ErrorRefiner errmap.Refiner
}

// Compile-time assertions for the fake transport.
var (
	_ adapter.Transport    = (*FakeTransport)(nil)
	_ adapter.ErrorRefiner = (*FakeTransport)(nil)
	_ adapter.TxSession    = (*fakeSession)(nil)
	_ adapter.Rows         = (*FakeRows)(nil)
)

// NewFakeTransport creates a fake transport for backend.
func NewFakeTransport(backend types.Backend) *FakeTransport {
	return &FakeTransport{
		backend: backend,
		counts:  make(map[string]int),
	}
}

// Count returns how many times op ran. Operations: acquire, release, begin,
// commit, rollback, exec, query, fill, fetch, ping, close.
func (f *FakeTransport) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.counts[op]
}

// Closed reports whether Close was called.
func (f *FakeTransport) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func (f *FakeTransport) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts[op]++
}

// Backend returns the configured backend.
func (f *FakeTransport) Backend() types.Backend {
	return f.backend
}

// Refiner returns the configured error refiner.
func (f *FakeTransport) Refiner() errmap.Refiner {
	return f.ErrorRefiner
}

// Acquire returns a non-transactional session.
func (f *FakeTransport) Acquire(ctx context.Context) (adapter.Session, error) {
	f.record("acquire")
	if f.OnAcquire != nil {
		if err := f.OnAcquire(ctx); err != nil {
			return nil, err
		}
	}

	return &fakeSession{t: f}, nil
}

// Begin returns a transactional session.
func (f *FakeTransport) Begin(ctx context.Context) (adapter.TxSession, error) {
	f.record("begin")
	if f.OnBegin != nil {
		if err := f.OnBegin(ctx); err != nil {
			return nil, err
		}
	}

	return &fakeSession{t: f, tx: true}, nil
}

// Ping calls OnPing.
func (f *FakeTransport) Ping(ctx context.Context) error {
	f.record("ping")
	if f.OnPing != nil {
		return f.OnPing(ctx)
	}

	return nil
}

// Close marks the transport closed.
func (f *FakeTransport) Close() error {
	f.record("close")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true

	return nil
}

type fakeSession struct {
	t  *FakeTransport
	tx bool
}

func (s *fakeSession) Exec(ctx context.Context, cmd *command.Command) (*adapter.ExecResult, error) {
	s.t.record("exec")
	if s.t.OnExec != nil {
		return s.t.OnExec(ctx, cmd)
	}

	return &adapter.ExecResult{RowsAffected: 0}, nil
}

func (s *fakeSession) Query(ctx context.Context, cmd *command.Command) (adapter.Rows, error) {
	s.t.record("query")
	if s.t.OnQuery != nil {
		return s.t.OnQuery(ctx, cmd)
	}

	return NewFakeRows(nil), nil
}

func (s *fakeSession) Fill(ctx context.Context, cmd *command.Command, all bool) (*adapter.FillResult, error) {
	s.t.record("fill")
	if s.t.OnFill != nil {
		return s.t.OnFill(ctx, cmd, all)
	}

	return &adapter.FillResult{RowsAffected: -1}, nil
}

func (s *fakeSession) FetchCursor(ctx context.Context, name string) (*types.Table, error) {
	s.t.record("fetch")
	if s.t.OnFetchCursor != nil {
		return s.t.OnFetchCursor(ctx, name)
	}

	return nil, types.ErrCursorNotFound
}

func (s *fakeSession) Release() error {
	if !s.tx {
		s.t.record("release")
	}

	return nil
}

func (s *fakeSession) Commit() error {
	s.t.record("commit")
	if s.t.OnCommit != nil {
		return s.t.OnCommit()
	}

	return nil
}

func (s *fakeSession) Rollback() error {
	s.t.record("rollback")
	return nil
}

// FakeRows is an in-memory row reader.
type FakeRows struct {
	cols   []string
	rows   [][]any
	pos    int
	closed bool

	// Params is returned by Parameters.
	Params []types.ExecutedParameter

	// OnNext, when set, runs before each row is returned with the row index.
	OnNext func(i int)

	// FailErr, when set, ends the reader with this error after FailAfter rows.
	FailErr   error
	FailAfter int

	err error
}

// NewFakeRows creates a reader over rows.
func NewFakeRows(cols []string, rows ...[]any) *FakeRows {
	return &FakeRows{cols: cols, rows: rows, pos: -1}
}

// Columns returns the column names.
func (r *FakeRows) Columns() []string { return r.cols }

// Next advances to the next row.
func (r *FakeRows) Next() bool {
	if r.closed || r.err != nil {
		return false
	}
	if r.FailErr != nil && r.pos+1 >= r.FailAfter {
		r.err = r.FailErr
		return false
	}
	if r.pos+1 >= len(r.rows) {
		return false
	}
	r.pos++
	if r.OnNext != nil {
		r.OnNext(r.pos)
	}

	return true
}

// Values returns the current row.
func (r *FakeRows) Values() []any { return r.rows[r.pos] }

// Err returns FailErr once the reader has failed.
func (r *FakeRows) Err() error { return r.err }

// Close closes the reader.
func (r *FakeRows) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *FakeRows) Closed() bool { return r.closed }

// Parameters returns Params.
func (r *FakeRows) Parameters() []types.ExecutedParameter { return r.Params }

// Table builds a table from columns and rows.
func Table(cols []string, rows ...[]any) *types.Table {
	return &types.Table{Columns: cols, Rows: rows}
}
