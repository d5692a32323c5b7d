// Package errmap classifies execution failures into *types.CanonicalError.
//
// The shared Default mapper recognizes deadlines and cancellation. Backend
// adapters contribute a Refiner that translates their driver error codes;
// anything still unrecognized becomes KindUnknown with only the originating
// type identity kept as a diagnostic string.
package errmap

import (
	"context"
	"errors"
	"os"

	"github.com/arloliu/sqlexec/types"
)

// Mapper converts an error into a canonical error record.
type Mapper interface {
	// Map classifies err. It returns nil only when err is nil.
	Map(err error, opts ...MapOption) *types.CanonicalError
}

// Refiner translates backend-specific errors. It reports false when it does
// not recognize err.
type Refiner interface {
	Refine(err error) (*types.CanonicalError, bool)
}

// RefinerFunc adapts a function to the Refiner interface.
type RefinerFunc func(err error) (*types.CanonicalError, bool)

// Refine calls f(err).
func (f RefinerFunc) Refine(err error) (*types.CanonicalError, bool) {
	return f(err)
}

type mapOptions struct {
	code      string
	transient *bool
}

// MapOption supplies hints to Map.
type MapOption func(*mapOptions)

// WithCode supplies a backend code hint used when the mapped error has none.
func WithCode(code string) MapOption {
	return func(o *mapOptions) {
		o.code = code
	}
}

// WithTransient overrides the transience of deadline and cancellation errors.
func WithTransient(transient bool) MapOption {
	return func(o *mapOptions) {
		o.transient = &transient
	}
}

// ErrorMapper is the default Mapper: deadline and cancellation checks, then
// the refiner chain, then the Unknown fallback.
type ErrorMapper struct {
	refiner Refiner
}

// Compile-time assertion that ErrorMapper implements Mapper.
var _ Mapper = (*ErrorMapper)(nil)

// New creates an ErrorMapper that consults refiners, in order, after the
// shared deadline and cancellation checks.
//
// Parameters:
//   - refiners: Backend-specific refiners (nil entries are skipped)
//
// Returns:
//   - *ErrorMapper: The mapper
func New(refiners ...Refiner) *ErrorMapper {
	return &ErrorMapper{refiner: Chain(refiners...)}
}

// Default returns a mapper with no backend refiners.
func Default() *ErrorMapper {
	return New()
}

// Map classifies err in this order:
//  1. an existing *types.CanonicalError is returned as-is
//  2. deadline exceeded: KindTimeout, transient unless overridden
//  3. cancellation: KindTimeout, not transient unless overridden
//  4. the refiner chain
//  5. KindUnknown, not transient, Details set to the error's type identity
func (m *ErrorMapper) Map(err error, opts ...MapOption) *types.CanonicalError {
	if err == nil {
		return nil
	}

	o := mapOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if ce, ok := types.AsCanonical(err); ok {
		return ce
	}

	var ce *types.CanonicalError
	switch {
	case isDeadline(err):
		ce = types.NewCanonicalError(types.KindTimeout, override(o.transient, true), types.DiagnosticIdentity(err))
	case errors.Is(err, context.Canceled):
		ce = types.NewCanonicalError(types.KindTimeout, override(o.transient, false), types.DiagnosticIdentity(err))
	default:
		if m.refiner != nil {
			if refined, ok := m.refiner.Refine(err); ok && refined != nil {
				ce = refined
			}
		}
		if ce == nil {
			ce = types.NewCanonicalError(types.KindUnknown, false, types.DiagnosticIdentity(err))
		}
	}

	if ce.Code == "" {
		ce.Code = o.code
	}
	if ce.MessageKey == "" {
		ce.MessageKey = ce.Kind.MessageKey()
	}

	return ce
}

// Validation creates a validation error: deterministic, never transient.
func Validation(fields ...types.FieldError) *types.CanonicalError {
	return types.NewValidationError(fields...)
}

// Chain combines refiners; the first one that recognizes an error wins.
func Chain(refiners ...Refiner) Refiner {
	list := make([]Refiner, 0, len(refiners))
	for _, r := range refiners {
		if r != nil {
			list = append(list, r)
		}
	}
	if len(list) == 0 {
		return nil
	}
	if len(list) == 1 {
		return list[0]
	}

	return RefinerFunc(func(err error) (*types.CanonicalError, bool) {
		for _, r := range list {
			if ce, ok := r.Refine(err); ok {
				return ce, true
			}
		}

		return nil, false
	})
}

type timeouter interface {
	Timeout() bool
}

func isDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return true
	}

	return false
}

func override(o *bool, def bool) bool {
	if o != nil {
		return *o
	}

	return def
}
