package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/arloliu/sqlexec/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "sqlexec"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

type strategyKey struct {
	backend  types.Backend
	strategy types.Strategy
}

type kindKey struct {
	backend types.Backend
	kind    types.ErrorKind
}

// backendMetrics holds the per-backend metrics.
type backendMetrics struct {
	duration     *metrics.Histogram
	retries      *metrics.Counter
	rowsStreamed *metrics.Counter
	txBegin      *metrics.Counter
	txCommit     *metrics.Counter
	txRollback   *metrics.Counter
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Metrics for the known backends are pre-created at initialization time.
// Any other backend label is created on first use. Thread-safe for
// concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	commandTotal  map[strategyKey]*metrics.Counter
	commandErrors map[kindKey]*metrics.Counter
	backends      map[types.Backend]*backendMetrics
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

var (
	allStrategies = []types.Strategy{
		types.StrategyBufferedSingle,
		types.StrategyBufferedMulti,
		types.StrategyStreaming,
	}
	allKinds = []types.ErrorKind{
		types.KindUnknown,
		types.KindTimeout,
		types.KindValidation,
		types.KindConnection,
		types.KindDeadlock,
		types.KindConstraint,
		types.KindSyntax,
		types.KindPermission,
		types.KindNotFound,
		types.KindConcurrency,
	}
)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	exec, _ := sqlexec.New(transport,
//	    sqlexec.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix:        "sqlexec",
		commandTotal:  make(map[strategyKey]*metrics.Counter),
		commandErrors: make(map[kindKey]*metrics.Counter),
		backends:      make(map[types.Backend]*backendMetrics),
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics for the known backends.
func (c *Collector) initMetrics() {
	p := c.prefix
	for _, b := range types.Backends() {
		for _, s := range allStrategies {
			c.commandTotal[strategyKey{b, s}] = c.set.NewCounter(
				fmt.Sprintf(`%s_commands_total{backend="%s",strategy="%s"}`, p, b, s))
		}
		for _, k := range allKinds {
			c.commandErrors[kindKey{b, k}] = c.set.NewCounter(
				fmt.Sprintf(`%s_command_errors_total{backend="%s",kind="%s"}`, p, b, k))
		}
		c.backends[b] = &backendMetrics{
			duration:     c.set.NewHistogram(fmt.Sprintf(`%s_command_duration_seconds{backend="%s"}`, p, b)),
			retries:      c.set.NewCounter(fmt.Sprintf(`%s_retry_attempts_total{backend="%s"}`, p, b)),
			rowsStreamed: c.set.NewCounter(fmt.Sprintf(`%s_rows_streamed_total{backend="%s"}`, p, b)),
			txBegin:      c.set.NewCounter(fmt.Sprintf(`%s_tx_begin_total{backend="%s"}`, p, b)),
			txCommit:     c.set.NewCounter(fmt.Sprintf(`%s_tx_commit_total{backend="%s"}`, p, b)),
			txRollback:   c.set.NewCounter(fmt.Sprintf(`%s_tx_rollback_total{backend="%s"}`, p, b)),
		}
	}
}

// Set returns the metrics set the collector registers with.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// counter returns a pre-created counter or creates it on first use.
func (c *Collector) counter(pre *metrics.Counter, name string, args ...any) *metrics.Counter {
	if pre != nil {
		return pre
	}

	return c.set.GetOrCreateCounter(fmt.Sprintf(name, args...))
}

// ----------------------
// Commands
// ----------------------

// IncCommandTotal increments the executed command counter.
func (c *Collector) IncCommandTotal(backend types.Backend, strategy types.Strategy) {
	c.counter(c.commandTotal[strategyKey{backend, strategy}],
		`%s_commands_total{backend="%s",strategy="%s"}`, c.prefix, backend, strategy).Inc()
}

// IncCommandError increments the surfaced error counter for an error kind.
func (c *Collector) IncCommandError(backend types.Backend, kind types.ErrorKind) {
	c.counter(c.commandErrors[kindKey{backend, kind}],
		`%s_command_errors_total{backend="%s",kind="%s"}`, c.prefix, backend, kind).Inc()
}

// ObserveCommandDuration records a command duration in seconds.
func (c *Collector) ObserveCommandDuration(backend types.Backend, seconds float64) {
	if m, ok := c.backends[backend]; ok {
		m.duration.Update(seconds)
		return
	}
	c.set.GetOrCreateHistogram(fmt.Sprintf(`%s_command_duration_seconds{backend="%s"}`, c.prefix, backend)).Update(seconds)
}

// ----------------------
// Retry and Streaming
// ----------------------

// IncRetryAttempt increments the retried attempt counter.
func (c *Collector) IncRetryAttempt(backend types.Backend) {
	c.backendCounter(backend, "retry_attempts_total", func(m *backendMetrics) *metrics.Counter { return m.retries }).Inc()
}

// AddRowsStreamed adds delivered streaming rows.
func (c *Collector) AddRowsStreamed(backend types.Backend, rows int) {
	if rows <= 0 {
		return
	}
	c.backendCounter(backend, "rows_streamed_total", func(m *backendMetrics) *metrics.Counter { return m.rowsStreamed }).Add(rows)
}

// ----------------------
// Transactions
// ----------------------

// IncTxBegin increments the transaction begin counter.
func (c *Collector) IncTxBegin(backend types.Backend) {
	c.backendCounter(backend, "tx_begin_total", func(m *backendMetrics) *metrics.Counter { return m.txBegin }).Inc()
}

// IncTxCommit increments the transaction commit counter.
func (c *Collector) IncTxCommit(backend types.Backend) {
	c.backendCounter(backend, "tx_commit_total", func(m *backendMetrics) *metrics.Counter { return m.txCommit }).Inc()
}

// IncTxRollback increments the transaction rollback counter.
func (c *Collector) IncTxRollback(backend types.Backend) {
	c.backendCounter(backend, "tx_rollback_total", func(m *backendMetrics) *metrics.Counter { return m.txRollback }).Inc()
}

func (c *Collector) backendCounter(backend types.Backend, suffix string, pick func(*backendMetrics) *metrics.Counter) *metrics.Counter {
	if m, ok := c.backends[backend]; ok {
		return pick(m)
	}

	return c.set.GetOrCreateCounter(fmt.Sprintf(`%s_%s{backend="%s"}`, c.prefix, suffix, backend))
}
