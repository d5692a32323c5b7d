package sqlexec

import (
	"time"

	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/internal/logging"
	"github.com/arloliu/sqlexec/internal/metrics"
	"github.com/arloliu/sqlexec/policy"
	"github.com/arloliu/sqlexec/types"
)

// DefaultCommandTimeout bounds a command attempt when neither the command nor
// the configuration sets a timeout.
const DefaultCommandTimeout = 30 * time.Second

// ExecutorConfig holds configuration for an Executor.
type ExecutorConfig struct {
	Retry             types.RetryConfig
	CommandTimeout    time.Duration
	ValidationEnabled bool
	Selector          StrategySelector
	Refiners          []errmap.Refiner
	Metrics           MetricsCollector
	Logger            types.Logger
}

// DefaultConfig returns an ExecutorConfig with sensible defaults.
//
// Defaults:
//   - Retry: enabled, 3 attempts, 1s fixed delay
//   - CommandTimeout: 30s
//   - ValidationEnabled: true
//   - Selector: policy.NewCapabilitySelector()
//
// Returns:
//   - *ExecutorConfig: Configuration with default settings
func DefaultConfig() *ExecutorConfig {
	return &ExecutorConfig{
		Retry:             types.DefaultRetryConfig(),
		CommandTimeout:    DefaultCommandTimeout,
		ValidationEnabled: true,
		Selector:          policy.NewCapabilitySelector(),
		Metrics:           metrics.NewNopMetrics(),
		Logger:            logging.NewNopLogger(),
	}
}

// Option configures an ExecutorConfig.
type Option func(*ExecutorConfig)

// WithRetryConfig replaces the retry configuration.
//
// Parameters:
//   - cfg: Retry configuration
//
// Returns:
//   - Option: Configuration option
func WithRetryConfig(cfg types.RetryConfig) Option {
	return func(c *ExecutorConfig) {
		c.Retry = cfg
	}
}

// WithRetry enables retry with maxAttempts total attempts and a fixed delay
// between them.
//
// Parameters:
//   - maxAttempts: Total attempts including the first
//   - delay: Constant wait between attempts
//
// Returns:
//   - Option: Configuration option
func WithRetry(maxAttempts int, delay time.Duration) Option {
	return func(c *ExecutorConfig) {
		c.Retry = types.RetryConfig{Enabled: true, MaxAttempts: maxAttempts, Delay: delay}
	}
}

// WithoutRetry disables retry; every command runs exactly once.
func WithoutRetry() Option {
	return func(c *ExecutorConfig) {
		c.Retry.Enabled = false
	}
}

// WithCommandTimeout sets the default per-attempt timeout. A command's own
// timeout takes precedence. Zero or negative restores DefaultCommandTimeout.
//
// Parameters:
//   - d: Default timeout
//
// Returns:
//   - Option: Configuration option
func WithCommandTimeout(d time.Duration) Option {
	return func(c *ExecutorConfig) {
		if d <= 0 {
			d = DefaultCommandTimeout
		}
		c.CommandTimeout = d
	}
}

// WithValidation toggles full command validation before execution.
// Structural checks (empty text, duplicate parameter names) always run.
func WithValidation(enabled bool) Option {
	return func(c *ExecutorConfig) {
		c.ValidationEnabled = enabled
	}
}

// WithStrategySelector replaces the execution strategy selector.
//
// The executor never streams on a backend without streaming support, whatever
// the selector returns.
//
// Parameters:
//   - selector: The selector implementation
//
// Returns:
//   - Option: Configuration option
func WithStrategySelector(selector StrategySelector) Option {
	return func(c *ExecutorConfig) {
		c.Selector = selector
	}
}

// WithErrorRefiner adds a refiner consulted before the transport's own refiner.
func WithErrorRefiner(refiner errmap.Refiner) Option {
	return func(c *ExecutorConfig) {
		if refiner != nil {
			c.Refiners = append(c.Refiners, refiner)
		}
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	import vmmetrics "github.com/arloliu/sqlexec/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	exec, _ := sqlexec.New(transport,
//	    sqlexec.WithMetrics(collector),
//	)
func WithMetrics(collector MetricsCollector) Option {
	return func(c *ExecutorConfig) {
		c.Metrics = collector
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// *slog.Logger satisfies the interface.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	exec, _ := sqlexec.New(transport,
//	    sqlexec.WithLogger(slog.Default()),
//	)
func WithLogger(logger types.Logger) Option {
	return func(c *ExecutorConfig) {
		c.Logger = logger
	}
}
