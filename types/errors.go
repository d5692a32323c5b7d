package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrorKind is the closed, provider-independent failure taxonomy.
type ErrorKind int

const (
	// KindUnknown is any failure no mapper could classify.
	KindUnknown ErrorKind = iota
	// KindTimeout is a deadline or cancellation.
	KindTimeout
	// KindValidation is a caller-input failure. Never transient.
	KindValidation
	// KindConnection is a failure to reach or keep a backend connection.
	KindConnection
	// KindDeadlock is a deadlock victim.
	KindDeadlock
	// KindConstraint is a unique, foreign key, check or not-null violation.
	KindConstraint
	// KindSyntax is malformed SQL rejected by the backend.
	KindSyntax
	// KindPermission is an authorization failure.
	KindPermission
	// KindNotFound is a missing table, view or procedure.
	KindNotFound
	// KindConcurrency is a serialization failure or resource-busy condition.
	KindConcurrency
)

var errorKindNames = [...]string{
	KindUnknown:     "unknown",
	KindTimeout:     "timeout",
	KindValidation:  "validation",
	KindConnection:  "connection",
	KindDeadlock:    "deadlock",
	KindConstraint:  "constraint",
	KindSyntax:      "syntax",
	KindPermission:  "permission",
	KindNotFound:    "not_found",
	KindConcurrency: "concurrency",
}

// String returns the string representation of the ErrorKind.
func (k ErrorKind) String() string {
	if k >= 0 && int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}

	return "unknown"
}

// MessageKey returns the stable localization key for the kind, e.g. "sqlexec.error.timeout".
func (k ErrorKind) MessageKey() string {
	return "sqlexec.error." + k.String()
}

// Kind sentinels. A *CanonicalError unwraps to exactly one of these.
var (
	ErrUnknown     = errors.New("sqlexec: unknown error")
	ErrTimeout     = errors.New("sqlexec: timeout")
	ErrValidation  = errors.New("sqlexec: validation failed")
	ErrConnection  = errors.New("sqlexec: connection failure")
	ErrDeadlock    = errors.New("sqlexec: deadlock")
	ErrConstraint  = errors.New("sqlexec: constraint violation")
	ErrSyntax      = errors.New("sqlexec: syntax error")
	ErrPermission  = errors.New("sqlexec: permission denied")
	ErrNotFound    = errors.New("sqlexec: object not found")
	ErrConcurrency = errors.New("sqlexec: concurrency conflict")
)

var kindSentinels = [...]error{
	KindUnknown:     ErrUnknown,
	KindTimeout:     ErrTimeout,
	KindValidation:  ErrValidation,
	KindConnection:  ErrConnection,
	KindDeadlock:    ErrDeadlock,
	KindConstraint:  ErrConstraint,
	KindSyntax:      ErrSyntax,
	KindPermission:  ErrPermission,
	KindNotFound:    ErrNotFound,
	KindConcurrency: ErrConcurrency,
}

// Sentinel returns the kind sentinel error.
func (k ErrorKind) Sentinel() error {
	if k >= 0 && int(k) < len(kindSentinels) {
		return kindSentinels[k]
	}

	return ErrUnknown
}

// FieldError is one field-level validation message.
type FieldError struct {
	// Field is the offending field, e.g. "text" or "parameters[2].name".
	Field string

	// Message describes the problem.
	Message string
}

// String returns "field: message".
func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}

	return f.Field + ": " + f.Message
}

// CanonicalError is the provider-independent error record surfaced to callers.
//
// Details may carry the originating error's type name and message for
// diagnostics, but the originating error itself is never reachable: Unwrap
// returns only the kind sentinel, so calling code cannot type-assert on a
// driver error.
type CanonicalError struct {
	// Kind is the classified failure category.
	Kind ErrorKind

	// Code is the backend error code when known (e.g. "1205", "40P01", "ORA-00060").
	Code string

	// MessageKey is a stable key suitable for localized rendering.
	MessageKey string

	// MessageParams are raw values for the localized message template.
	MessageParams []any

	// Fields lists field-level problems for validation failures.
	Fields []FieldError

	// Transient reports whether the failure is likely to succeed on retry.
	Transient bool

	// Details is an opaque diagnostic string.
	Details string
}

// Error implements the error interface.
func (e *CanonicalError) Error() string {
	var sb strings.Builder
	sb.WriteString("sqlexec: ")
	sb.WriteString(e.Kind.String())
	if e.Code != "" {
		sb.WriteString(" (code ")
		sb.WriteString(e.Code)
		sb.WriteString(")")
	}
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.String()
		}
		sb.WriteString(": ")
		sb.WriteString(strings.Join(parts, "; "))
	} else if e.Details != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Details)
	}

	return sb.String()
}

// Unwrap returns the kind sentinel so errors.Is(err, ErrTimeout) works.
func (e *CanonicalError) Unwrap() error {
	return e.Kind.Sentinel()
}

// NewCanonicalError creates a CanonicalError with the kind's default message key.
//
// Parameters:
//   - kind: The failure category
//   - transient: Whether the failure is likely to succeed on retry
//   - details: Diagnostic text
//
// Returns:
//   - *CanonicalError: The error record
func NewCanonicalError(kind ErrorKind, transient bool, details string) *CanonicalError {
	return &CanonicalError{
		Kind:       kind,
		MessageKey: kind.MessageKey(),
		Transient:  transient,
		Details:    details,
	}
}

// NewValidationError creates a non-transient validation error carrying field messages.
func NewValidationError(fields ...FieldError) *CanonicalError {
	params := make([]any, len(fields))
	for i, f := range fields {
		params[i] = f.String()
	}

	return &CanonicalError{
		Kind:          KindValidation,
		MessageKey:    KindValidation.MessageKey(),
		MessageParams: params,
		Fields:        fields,
	}
}

// AsCanonical extracts a *CanonicalError from err.
func AsCanonical(err error) (*CanonicalError, bool) {
	var ce *CanonicalError
	if errors.As(err, &ce) {
		return ce, true
	}

	return nil, false
}

// IsTransient reports whether err is a transient *CanonicalError.
func IsTransient(err error) bool {
	ce, ok := AsCanonical(err)

	return ok && ce.Transient
}

// DiagnosticIdentity returns the fully-qualified type identity of err,
// e.g. "*github.com/jackc/pgx/v5/pgconn.PgError". It is used only to fill
// CanonicalError.Details.
func DiagnosticIdentity(err error) string {
	if err == nil {
		return ""
	}

	t := reflect.TypeOf(err)
	prefix := ""
	for t.Kind() == reflect.Pointer {
		prefix += "*"
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return fmt.Sprintf("%T", err)
	}

	return prefix + t.PkgPath() + "." + t.Name()
}
