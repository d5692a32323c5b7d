package types

import (
	"errors"
	"strings"
	"time"
)

// Backend identifies one of the supported relational backends.
//
// The engine never branches on a Backend directly; backend facts are looked up
// through the capability package.
type Backend string

// String returns the string representation of the Backend.
func (b Backend) String() string {
	return string(b)
}

const (
	// BackendSQLServer is the SQL-Server-like backend (native multi-result sets).
	BackendSQLServer Backend = "sqlserver"
	// BackendPostgres is the PostgreSQL-like backend (multi-result via refcursors).
	BackendPostgres Backend = "postgres"
	// BackendOracle is the Oracle-like backend (always buffered, multi-result via refcursors).
	BackendOracle Backend = "oracle"
)

// backendAliases maps accepted spellings to canonical backends.
var backendAliases = map[string]Backend{
	"sqlserver":  BackendSQLServer,
	"mssql":      BackendSQLServer,
	"postgres":   BackendPostgres,
	"postgresql": BackendPostgres,
	"pgx":        BackendPostgres,
	"oracle":     BackendOracle,
	"ora":        BackendOracle,
}

// ParseBackend converts a configuration string into a Backend.
//
// Matching is case-insensitive and accepts common driver aliases
// ("mssql", "postgresql", "pgx", "ora").
//
// Parameters:
//   - s: The backend name
//
// Returns:
//   - Backend: The canonical backend
//   - error: ErrUnknownBackend if the name is not recognized
func ParseBackend(s string) (Backend, error) {
	if b, ok := backendAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b, nil
	}

	return "", &UnknownBackendError{Name: s}
}

// Backends returns the canonical backends in a stable order.
func Backends() []Backend {
	return []Backend{BackendSQLServer, BackendPostgres, BackendOracle}
}

// CommandKind describes how the command text is interpreted.
type CommandKind int

const (
	// KindText is plain SQL text.
	KindText CommandKind = iota
	// KindStoredProcedure is a stored procedure (or function) name.
	KindStoredProcedure
)

// String returns the string representation of the CommandKind.
func (k CommandKind) String() string {
	if k == KindStoredProcedure {
		return "stored-procedure"
	}

	return "text"
}

// Direction is the direction of a command parameter.
type Direction int

const (
	// DirectionInput is an input-only parameter.
	DirectionInput Direction = iota
	// DirectionOutput is an output-only parameter.
	DirectionOutput
	// DirectionInputOutput is a parameter that is both sent and received.
	DirectionInputOutput
	// DirectionReturnValue is the return value of a stored procedure.
	DirectionReturnValue
)

// String returns the string representation of the Direction.
func (d Direction) String() string {
	switch d {
	case DirectionOutput:
		return "out"
	case DirectionInputOutput:
		return "inout"
	case DirectionReturnValue:
		return "return"
	default:
		return "in"
	}
}

// IsOutput reports whether values flow back from the backend for this direction.
// Only Output and InputOutput parameters are surfaced as output values.
func (d Direction) IsOutput() bool {
	return d == DirectionOutput || d == DirectionInputOutput
}

// ParseDirection converts "in", "out", "inout" or "return" into a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "in", "input":
		return DirectionInput, true
	case "out", "output":
		return DirectionOutput, true
	case "inout", "in-out", "inputoutput":
		return DirectionInputOutput, true
	case "return", "returnvalue":
		return DirectionReturnValue, true
	default:
		return DirectionInput, false
	}
}

// Intent is the result shape declared by the caller.
type Intent int

const (
	// IntentSingleTable asks for one buffered table.
	IntentSingleTable Intent = iota
	// IntentAllTables asks for every result set as buffered tables.
	IntentAllTables
	// IntentSequential asks for rows one at a time (row mapping).
	IntentSequential
)

// String returns the string representation of the Intent.
func (i Intent) String() string {
	switch i {
	case IntentAllTables:
		return "all-tables"
	case IntentSequential:
		return "sequential"
	default:
		return "single-table"
	}
}

// Strategy is the execution strategy chosen once per command.
type Strategy int

const (
	// StrategyBufferedSingle fills one table.
	StrategyBufferedSingle Strategy = iota
	// StrategyBufferedMulti fills every result set (and every cursor) as a table.
	StrategyBufferedMulti
	// StrategyStreaming reads rows sequentially as they arrive.
	StrategyStreaming
)

// String returns the string representation of the Strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyBufferedMulti:
		return "buffered-multi"
	case StrategyStreaming:
		return "streaming"
	default:
		return "buffered-single"
	}
}

// RetryConfig controls the retry gate.
type RetryConfig struct {
	// Enabled turns automatic retry on or off.
	Enabled bool

	// MaxAttempts is the total number of executions allowed, including the first one.
	MaxAttempts int

	// Delay is the constant wait between attempts. It never grows.
	Delay time.Duration
}

// DefaultRetryConfig returns the default retry configuration: enabled, 3 attempts, 1s delay.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		Delay:       time.Second,
	}
}

// TxState is the state of a transaction handle.
type TxState int32

const (
	// TxActive means the transaction is open.
	TxActive TxState = iota
	// TxCommitted means the transaction was committed.
	TxCommitted
	// TxRolledBack means the transaction was rolled back explicitly.
	TxRolledBack
	// TxDisposed means the handle was closed while active (and therefore rolled back).
	TxDisposed
)

// String returns the string representation of the TxState.
func (s TxState) String() string {
	switch s {
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled-back"
	case TxDisposed:
		return "disposed"
	default:
		return "active"
	}
}

// Sentinel errors for common failure scenarios.
var (
	// ErrExecutorClosed indicates an operation was attempted on a closed executor.
	ErrExecutorClosed = errors.New("sqlexec: executor is closed")

	// ErrNilTransport indicates that a nil transport was provided.
	ErrNilTransport = errors.New("sqlexec: transport cannot be nil")

	// ErrTxDone indicates the transaction was already committed, rolled back or disposed.
	ErrTxDone = errors.New("sqlexec: transaction has already been completed")

	// ErrCursorNotFound indicates a cursor handle returned by the backend could not be drained.
	ErrCursorNotFound = errors.New("sqlexec: cursor not found")

	// ErrCursorsUnsupported indicates the backend exposes no server-side cursors.
	ErrCursorsUnsupported = errors.New("sqlexec: backend does not support ref cursors")

	// ErrNilCommand indicates that a nil command was provided.
	ErrNilCommand = errors.New("sqlexec: command cannot be nil")

	// ErrUnknownBackend indicates a backend name that is not recognized.
	ErrUnknownBackend = errors.New("sqlexec: unknown backend")
)

// UnknownBackendError is returned when a backend name cannot be resolved.
type UnknownBackendError struct {
	// Name is the requested backend name.
	Name string
}

// Error implements the error interface.
func (e *UnknownBackendError) Error() string {
	return "sqlexec: unknown backend " + `"` + e.Name + `"` + " (available: sqlserver, postgres, oracle)"
}

// Unwrap returns ErrUnknownBackend so callers can use errors.Is.
func (e *UnknownBackendError) Unwrap() error {
	return ErrUnknownBackend
}
