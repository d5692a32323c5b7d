package sqlexec

import (
	"strings"
	"time"

	"github.com/arloliu/sqlexec/capability"
	"github.com/arloliu/sqlexec/types"
)

// Settings is the externally loaded configuration of an Executor.
// The config package fills it from files, environment and flags.
type Settings struct {
	// Backend selects the backend transport.
	Backend types.Backend `koanf:"backend"`

	// ConnectionString is handed to the backend driver as is.
	ConnectionString string `koanf:"connection_string"`

	// CommandTimeout is the default per-attempt timeout.
	CommandTimeout time.Duration `koanf:"command_timeout"`

	Validation ValidationSettings `koanf:"validation"`
	Retry      RetrySettings      `koanf:"retry"`
	Log        LogSettings        `koanf:"log"`
	Metrics    MetricsSettings    `koanf:"metrics"`
}

// ValidationSettings toggles full command validation.
type ValidationSettings struct {
	Enabled bool `koanf:"enabled"`
}

// RetrySettings configures the retry gate.
type RetrySettings struct {
	Enabled     bool          `koanf:"enabled"`
	MaxAttempts int           `koanf:"max_attempts"`
	Delay       time.Duration `koanf:"delay"`
}

// LogSettings configures logging of the command-line tool.
type LogSettings struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`
}

// MetricsSettings configures metrics collection.
type MetricsSettings struct {
	// Prefix is prepended to metric names. Empty disables metrics.
	Prefix string `koanf:"prefix"`
}

// DefaultSettings returns settings matching DefaultConfig, with no backend.
func DefaultSettings() *Settings {
	retry := types.DefaultRetryConfig()

	return &Settings{
		CommandTimeout: DefaultCommandTimeout,
		Validation:     ValidationSettings{Enabled: true},
		Retry: RetrySettings{
			Enabled:     retry.Enabled,
			MaxAttempts: retry.MaxAttempts,
			Delay:       retry.Delay,
		},
		Log: LogSettings{Level: "info"},
	}
}

// Validate checks the settings.
//
// Returns:
//   - error: A validation *types.CanonicalError listing every problem, or nil
func (s *Settings) Validate() error {
	if s == nil {
		return types.NewValidationError(types.FieldError{Field: "settings", Message: "must not be nil"})
	}

	var fields []types.FieldError
	if _, err := capability.Resolve(s.Backend); err != nil {
		fields = append(fields, types.FieldError{Field: "backend", Message: err.Error()})
	}
	if strings.TrimSpace(s.ConnectionString) == "" {
		fields = append(fields, types.FieldError{Field: "connection_string", Message: "must not be empty"})
	}
	if s.CommandTimeout < 0 {
		fields = append(fields, types.FieldError{Field: "command_timeout", Message: "must not be negative"})
	}
	if s.Retry.Enabled && s.Retry.MaxAttempts < 1 {
		fields = append(fields, types.FieldError{Field: "retry.max_attempts", Message: "must be at least 1"})
	}
	if s.Retry.Delay < 0 {
		fields = append(fields, types.FieldError{Field: "retry.delay", Message: "must not be negative"})
	}
	switch strings.ToLower(s.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		fields = append(fields, types.FieldError{Field: "log.level", Message: "must be one of debug, info, warn, error"})
	}

	if len(fields) == 0 {
		return nil
	}

	return types.NewValidationError(fields...)
}

// Options converts the settings into executor options.
func (s *Settings) Options() []Option {
	return []Option{
		WithCommandTimeout(s.CommandTimeout),
		WithValidation(s.Validation.Enabled),
		WithRetryConfig(types.RetryConfig{
			Enabled:     s.Retry.Enabled,
			MaxAttempts: s.Retry.MaxAttempts,
			Delay:       s.Retry.Delay,
		}),
	}
}
