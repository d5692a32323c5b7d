// Package metrics provides internal metrics utilities for sqlexec.
package metrics

import "github.com/arloliu/sqlexec/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// IncCommandTotal discards the metric.
func (m *NopMetrics) IncCommandTotal(_ types.Backend, _ types.Strategy) {}

// IncCommandError discards the metric.
func (m *NopMetrics) IncCommandError(_ types.Backend, _ types.ErrorKind) {}

// ObserveCommandDuration discards the metric.
func (m *NopMetrics) ObserveCommandDuration(_ types.Backend, _ float64) {}

// IncRetryAttempt discards the metric.
func (m *NopMetrics) IncRetryAttempt(_ types.Backend) {}

// AddRowsStreamed discards the metric.
func (m *NopMetrics) AddRowsStreamed(_ types.Backend, _ int) {}

// IncTxBegin discards the metric.
func (m *NopMetrics) IncTxBegin(_ types.Backend) {}

// IncTxCommit discards the metric.
func (m *NopMetrics) IncTxCommit(_ types.Backend) {}

// IncTxRollback discards the metric.
func (m *NopMetrics) IncTxRollback(_ types.Backend) {}
