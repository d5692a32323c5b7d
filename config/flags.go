package config

import (
	"github.com/arloliu/sqlexec"
	"github.com/spf13/pflag"
)

// flagKeys maps flag names to settings keys.
var flagKeys = map[string]string{
	"backend":            "backend",
	"dsn":                "connection_string",
	"command-timeout":    "command_timeout",
	"validate":           "validation.enabled",
	"retry":              "retry.enabled",
	"retry-max-attempts": "retry.max_attempts",
	"retry-delay":        "retry.delay",
	"log-level":          "log.level",
	"metrics-prefix":     "metrics.prefix",
}

// RegisterFlags adds the settings flags to fs. Flag defaults mirror
// sqlexec.DefaultSettings; only flags set on the command line override
// file and environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	d := sqlexec.DefaultSettings()

	fs.String("backend", "", "backend: sqlserver, postgres or oracle")
	fs.String("dsn", "", "driver connection string")
	fs.Duration("command-timeout", d.CommandTimeout, "default per-attempt command timeout")
	fs.Bool("validate", d.Validation.Enabled, "validate commands before execution")
	fs.Bool("retry", d.Retry.Enabled, "retry transient failures")
	fs.Int("retry-max-attempts", d.Retry.MaxAttempts, "total attempts including the first")
	fs.Duration("retry-delay", d.Retry.Delay, "fixed delay between attempts")
	fs.String("log-level", d.Log.Level, "log level: debug, info, warn, error")
	fs.String("metrics-prefix", d.Metrics.Prefix, "metrics name prefix (empty disables metrics)")
}
