package errmap

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/arloliu/sqlexec/types"
)

// Rule classifies one backend error code.
type Rule struct {
	Kind      types.ErrorKind
	Transient bool
}

// CodeTable maps backend error codes to rules. Adapters build their refiners
// from a CodeTable and a function extracting the code from a driver error.
type CodeTable map[string]Rule

// Refiner returns a Refiner that looks up the code extracted from err.
//
// Parameters:
//   - extract: Returns the backend code and message of err, or ok=false if err
//     is not a driver error of this backend
//   - fallback: Optional classification for recognized driver errors whose code
//     is not in the table (nil means "not recognized")
//
// Returns:
//   - Refiner: The table-driven refiner
func (t CodeTable) Refiner(extract func(error) (code, message string, ok bool), fallback func(code string) (Rule, bool)) Refiner {
	return RefinerFunc(func(err error) (*types.CanonicalError, bool) {
		code, msg, ok := extract(err)
		if !ok {
			return nil, false
		}

		rule, found := t[code]
		if !found && fallback != nil {
			rule, found = fallback(code)
		}
		if !found {
			return nil, false
		}

		ce := types.NewCanonicalError(rule.Kind, rule.Transient, types.DiagnosticIdentity(err))
		ce.Code = code
		if msg != "" {
			ce.MessageParams = []any{msg}
		}

		return ce, true
	})
}

// ConnectionRefiner recognizes driver-independent connectivity failures:
// broken pooled connections, refused or reset sockets and truncated streams.
// All of them are transient.
func ConnectionRefiner() Refiner {
	return RefinerFunc(func(err error) (*types.CanonicalError, bool) {
		if !isConnectionFailure(err) {
			return nil, false
		}

		return types.NewCanonicalError(types.KindConnection, true, types.DiagnosticIdentity(err)), true
	})
}

func isConnectionFailure(err error) bool {
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
