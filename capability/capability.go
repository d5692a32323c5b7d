// Package capability centralizes per-backend facts.
//
// The engine never switches on a backend name; it resolves a Capabilities
// value once and consults its fields. The table is fixed and not configurable.
package capability

import (
	"strings"

	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casing is the identifier casing rule applied when normalizing table names.
type Casing int

const (
	// CasingNone leaves identifiers unchanged.
	CasingNone Casing = iota
	// CasingUpperUnquoted folds unquoted identifiers to upper case.
	CasingUpperUnquoted
)

// String returns the string representation of the Casing.
func (c Casing) String() string {
	if c == CasingUpperUnquoted {
		return "uppercase-unquoted"
	}

	return "none"
}

// Capabilities are the fixed facts of one backend.
type Capabilities struct {
	// Backend is the backend these facts describe.
	Backend types.Backend

	// SupportsStreaming reports whether rows may be read sequentially.
	SupportsStreaming bool

	// MultiResultRequiresCursor reports whether stored procedures return
	// multiple result sets only through ref-cursor output parameters.
	MultiResultRequiresCursor bool

	// CursorRequiresTransaction reports whether cursor handles are only valid
	// inside the transaction that opened them.
	CursorRequiresTransaction bool

	// IdentifierCasing is the identifier folding rule.
	IdentifierCasing Casing

	// ParameterPrefix is the wire prefix for named parameters.
	ParameterPrefix byte
}

var table = map[types.Backend]Capabilities{
	types.BackendSQLServer: {
		Backend:           types.BackendSQLServer,
		SupportsStreaming: true,
		IdentifierCasing:  CasingNone,
		ParameterPrefix:   '@',
	},
	types.BackendPostgres: {
		Backend:                   types.BackendPostgres,
		SupportsStreaming:         true,
		MultiResultRequiresCursor: true,
		CursorRequiresTransaction: true,
		IdentifierCasing:          CasingNone,
		ParameterPrefix:           ':',
	},
	types.BackendOracle: {
		Backend:                   types.BackendOracle,
		SupportsStreaming:         false,
		MultiResultRequiresCursor: true,
		IdentifierCasing:          CasingUpperUnquoted,
		ParameterPrefix:           ':',
	},
}

// Resolve returns the capabilities of a backend.
//
// Parameters:
//   - backend: The backend to resolve
//
// Returns:
//   - Capabilities: The fixed capability facts
//   - error: *types.UnknownBackendError if the backend is not supported
func Resolve(backend types.Backend) (Capabilities, error) {
	caps, ok := table[backend]
	if !ok {
		return Capabilities{}, &types.UnknownBackendError{Name: string(backend)}
	}

	return caps, nil
}

// MustResolve is like Resolve but panics on unknown backends.
// It is intended for adapters with a constant backend.
func MustResolve(backend types.Backend) Capabilities {
	caps, err := Resolve(backend)
	if err != nil {
		panic(err)
	}

	return caps
}

// NormalizeTableName applies the backend identifier casing to a (possibly
// multi-part) table name handed to an external table operation.
//
// Names containing a double quote are passed through unchanged. Otherwise each
// dot-separated part is trimmed and, for CasingUpperUnquoted, upper-cased with
// culture-invariant rules.
func (c Capabilities) NormalizeTableName(name string) string {
	if c.IdentifierCasing != CasingUpperUnquoted || strings.ContainsRune(name, '"') {
		return name
	}

	// A Caser is stateful; one per call.
	upper := cases.Upper(language.Und)
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = upper.String(strings.TrimSpace(p))
	}

	return strings.Join(parts, ".")
}

// ParameterName returns the wire name for a parameter: any existing prefix is
// replaced with the backend prefix.
func (c Capabilities) ParameterName(name string) string {
	return string(c.ParameterPrefix) + command.StripPrefix(name)
}
