package policy

import (
	"context"
	"time"

	"github.com/arloliu/sqlexec/errmap"
	"github.com/arloliu/sqlexec/internal/logging"
	"github.com/arloliu/sqlexec/internal/metrics"
	"github.com/arloliu/sqlexec/types"
	"github.com/sethvargo/go-retry"
)

// AttemptFunc runs one execution attempt. attempt starts at 1.
type AttemptFunc func(ctx context.Context, attempt int) error

// FixedDelayRetry is a bounded, constant-delay retry gate.
//
// The delay never grows between attempts. The gate is safe for concurrent use;
// it holds no per-call state.
type FixedDelayRetry struct {
	config  types.RetryConfig
	mapper  errmap.Mapper
	logger  types.Logger
	metrics types.MetricsCollector
	backend types.Backend
}

// RetryOption configures a FixedDelayRetry.
type RetryOption func(*FixedDelayRetry)

// WithRetryLogger sets the logger used to report retried attempts.
//
// Parameters:
//   - logger: Logger implementation
//
// Returns:
//   - RetryOption: Configuration option
func WithRetryLogger(logger types.Logger) RetryOption {
	return func(r *FixedDelayRetry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRetryMetrics sets the collector and backend label for retry metrics.
//
// Parameters:
//   - collector: Metrics collector
//   - backend: Backend label
//
// Returns:
//   - RetryOption: Configuration option
func WithRetryMetrics(collector types.MetricsCollector, backend types.Backend) RetryOption {
	return func(r *FixedDelayRetry) {
		if collector != nil {
			r.metrics = collector
		}
		r.backend = backend
	}
}

// NewFixedDelayRetry creates a retry gate.
//
// Parameters:
//   - config: Retry configuration
//   - mapper: Error mapper used to classify failures (nil uses errmap.Default)
//   - opts: Optional configuration options
//
// Returns:
//   - *FixedDelayRetry: The retry gate
func NewFixedDelayRetry(config types.RetryConfig, mapper errmap.Mapper, opts ...RetryOption) *FixedDelayRetry {
	if mapper == nil {
		mapper = errmap.Default()
	}
	r := &FixedDelayRetry{
		config:  config,
		mapper:  mapper,
		logger:  logging.NewNopLogger(),
		metrics: metrics.NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Config returns the retry configuration.
func (r *FixedDelayRetry) Config() types.RetryConfig {
	return r.config
}

// Mapper returns the error mapper used to classify failures.
func (r *FixedDelayRetry) Mapper() errmap.Mapper {
	return r.mapper
}

// Run executes fn at least once and at most MaxAttempts times.
//
// fn runs exactly once when retry is disabled, when inUserTx is true, or when
// MaxAttempts is 1 or less. Otherwise a failure classified as transient is
// retried after the configured delay while attempts remain. No attempt starts
// once ctx is done; if cancellation interrupts the wait between attempts, the
// last attempt's failure is returned.
//
// Parameters:
//   - ctx: Context for cancellation
//   - inUserTx: Whether the call runs inside a caller-managed transaction
//   - fn: The attempt function
//
// Returns:
//   - error: nil on success, otherwise a *types.CanonicalError
func (r *FixedDelayRetry) Run(ctx context.Context, inUserTx bool, fn AttemptFunc) error {
	if err := ctx.Err(); err != nil {
		return r.mapper.Map(err)
	}

	if !r.config.Enabled || inUserTx || r.config.MaxAttempts <= 1 {
		if err := fn(ctx, 1); err != nil {
			return r.mapper.Map(err)
		}

		return nil
	}

	var (
		attempt int
		lastErr *types.CanonicalError
	)

	delay := r.config.Delay
	if delay < 0 {
		delay = 0
	}
	backoff := retry.WithMaxRetries(uint64(r.config.MaxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
		return delay, false
	}))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			lastErr = nil
			return nil
		}

		lastErr = r.mapper.Map(err)
		if !lastErr.Transient || attempt >= r.config.MaxAttempts {
			return lastErr
		}

		r.logger.Warn("sqlexec: transient failure, retrying",
			"attempt", attempt,
			"max_attempts", r.config.MaxAttempts,
			"delay", delay,
			"kind", lastErr.Kind.String(),
			"code", lastErr.Code,
		)
		r.metrics.IncRetryAttempt(r.backend)

		return retry.RetryableError(lastErr)
	})
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}

	return r.mapper.Map(err)
}

// RunValue is Run for attempt functions that produce a value. Only the value of
// the final, successful attempt is returned.
func RunValue[T any](ctx context.Context, r *FixedDelayRetry, inUserTx bool, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var result T
	err := r.Run(ctx, inUserTx, func(ctx context.Context, attempt int) error {
		v, err := fn(ctx, attempt)
		if err != nil {
			return err
		}
		result = v

		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
