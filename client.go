package sqlexec

import "github.com/arloliu/sqlexec/types"

// Type aliases for convenience - re-export from types package.
type (
	Backend          = types.Backend
	Result           = types.Result
	Row              = types.Row
	Table            = types.Table
	CanonicalError   = types.CanonicalError
	RetryConfig      = types.RetryConfig
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export backend constants for convenience.
const (
	SQLServer = types.BackendSQLServer
	Postgres  = types.BackendPostgres
	Oracle    = types.BackendOracle
)

// Re-export strategy constants for convenience.
const (
	StrategyStreaming      = types.StrategyStreaming
	StrategyBufferedSingle = types.StrategyBufferedSingle
	StrategyBufferedMulti  = types.StrategyBufferedMulti
)
