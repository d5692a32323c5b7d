// Package vm implements types.MetricsCollector on github.com/VictoriaMetrics/metrics,
// exporting executor activity in the Prometheus text format.
//
// # Basic Usage
//
// Create a collector with default prefix "sqlexec":
//
//	collector := vm.New()
//	exec, _ := sqlexec.New(transport,
//	    sqlexec.WithMetrics(collector),
//	)
//
// # Custom Prefix
//
// Use WithPrefix to customize the metric name prefix:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//
// This produces metrics like:
//   - myapp_commands_total{backend="postgres",strategy="streaming"}
//   - myapp_command_duration_seconds{backend="oracle"}
//
// # Exposing Metrics
//
// Serve the collector's set over HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//
// or dump it once, as the sqlexec CLI does with --dump-metrics:
//
//	collector.WritePrometheus(os.Stderr)
//
// # Metrics Provided
//
// Commands:
//   - {prefix}_commands_total{backend,strategy} - Counter of executed commands
//   - {prefix}_command_errors_total{backend,kind} - Counter of surfaced failures per error kind
//   - {prefix}_command_duration_seconds{backend} - Histogram of command latencies, retries included
//
// Retry and streaming:
//   - {prefix}_retry_attempts_total{backend} - Counter of retried attempts
//   - {prefix}_rows_streamed_total{backend} - Counter of rows delivered by streaming
//
// Transactions:
//   - {prefix}_tx_begin_total{backend} - Counter of caller-managed transactions
//   - {prefix}_tx_commit_total{backend} - Counter of commits
//   - {prefix}_tx_rollback_total{backend} - Counter of rollbacks (disposal included)
//
// # Performance Notes
//
// Metrics for every known backend, strategy and error kind are created up
// front with the NewXXX constructors; only unknown backends fall back to
// GetOrCreateXXX. Unless WithMetricsSet is given, New registers its own Set
// globally so metrics.WritePrometheus includes it.
package vm
