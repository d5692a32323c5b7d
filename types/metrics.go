package types

// MetricsCollector defines methods for collecting operational metrics.
//
// All command-scoped methods accept a Backend parameter for labeling.
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/sqlexec/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	exec, _ := sqlexec.New(transport,
//	    sqlexec.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Commands
	// ----------------------

	// IncCommandTotal increments the executed command counter for the chosen strategy.
	IncCommandTotal(backend Backend, strategy Strategy)

	// IncCommandError increments the surfaced command error counter for an error kind.
	IncCommandError(backend Backend, kind ErrorKind)

	// ObserveCommandDuration records a command duration in seconds, retries included.
	ObserveCommandDuration(backend Backend, seconds float64)

	// ----------------------
	// Retry
	// ----------------------

	// IncRetryAttempt increments the counter when a failed attempt is retried.
	IncRetryAttempt(backend Backend)

	// ----------------------
	// Streaming
	// ----------------------

	// AddRowsStreamed adds the number of rows delivered through the streaming path.
	AddRowsStreamed(backend Backend, rows int)

	// ----------------------
	// Transactions
	// ----------------------

	// IncTxBegin increments the counter when a caller-managed transaction begins.
	IncTxBegin(backend Backend)

	// IncTxCommit increments the counter when a transaction commits.
	IncTxCommit(backend Backend)

	// IncTxRollback increments the counter when a transaction rolls back.
	// Disposal of an active transaction counts as a rollback.
	IncTxRollback(backend Backend)
}
