package testutil

import (
	"sync"

	"github.com/arloliu/sqlexec/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Commands
	CommandTotal    map[types.Strategy]int64
	CommandErrors   map[types.ErrorKind]int64
	CommandDuration []float64

	// Retry and streaming
	RetryAttempts int64
	RowsStreamed  int64

	// Transactions
	TxBegin    int64
	TxCommit   int64
	TxRollback int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		CommandTotal:  make(map[types.Strategy]int64),
		CommandErrors: make(map[types.ErrorKind]int64),
	}
}

func (m *TestMetricsCollector) IncCommandTotal(_ types.Backend, strategy types.Strategy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandTotal[strategy]++
}

func (m *TestMetricsCollector) IncCommandError(_ types.Backend, kind types.ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandErrors[kind]++
}

func (m *TestMetricsCollector) ObserveCommandDuration(_ types.Backend, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommandDuration = append(m.CommandDuration, seconds)
}

func (m *TestMetricsCollector) IncRetryAttempt(_ types.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetryAttempts++
}

func (m *TestMetricsCollector) AddRowsStreamed(_ types.Backend, rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RowsStreamed += int64(rows)
}

func (m *TestMetricsCollector) IncTxBegin(_ types.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxBegin++
}

func (m *TestMetricsCollector) IncTxCommit(_ types.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxCommit++
}

func (m *TestMetricsCollector) IncTxRollback(_ types.Backend) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TxRollback++
}

// Errors returns the surfaced error count for kind.
func (m *TestMetricsCollector) Errors(kind types.ErrorKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.CommandErrors[kind]
}

// Total returns the command count for strategy.
func (m *TestMetricsCollector) Total(strategy types.Strategy) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.CommandTotal[strategy]
}

// Retries returns the retry attempt count.
func (m *TestMetricsCollector) Retries() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.RetryAttempts
}
