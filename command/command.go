// Package command provides the immutable Command/Parameter model executed by sqlexec.
//
// A Command is built once, validated, and discarded after one execution:
//
//	cmd := command.Procedure("pkg_customers.get_customer",
//	    command.In(":p_customer_id", types.Int64, 42),
//	    command.RefCursor(":p_customer_cursor"),
//	    command.Out(":p_total", types.Decimal),
//	)
//
// Parameter names may carry a wire prefix ('@', ':' or '?'). Names are always
// compared prefix-stripped and case-insensitively.
package command

import (
	"strings"
	"time"

	"github.com/arloliu/sqlexec/types"
)

// Parameter is one declared command parameter.
type Parameter struct {
	// Name is the parameter name, with or without a wire prefix.
	Name string

	// Type is the declared logical type used for binding and normalization.
	Type types.LogicalType

	// Direction is the parameter direction.
	Direction types.Direction

	// Value is the input value. Ignored for Output and ReturnValue parameters.
	Value any

	// Size is the optional maximum size for variable-length outputs. 0 means unspecified.
	Size int
}

// StrippedName returns the parameter name without its wire prefix.
func (p Parameter) StrippedName() string {
	return StripPrefix(p.Name)
}

// Command is an immutable description of what to run.
type Command struct {
	text    string
	kind    types.CommandKind
	params  []Parameter
	timeout time.Duration
}

// Option configures a Command while it is being built.
type Option func(*Command)

// New creates a text command.
//
// Parameters:
//   - text: SQL text
//   - opts: Parameter and timeout options
//
// Returns:
//   - *Command: The immutable command
func New(text string, opts ...Option) *Command {
	return build(text, types.KindText, opts)
}

// Procedure creates a stored-procedure command.
//
// Parameters:
//   - name: Procedure (or function) name, optionally schema- or package-qualified
//   - opts: Parameter and timeout options
//
// Returns:
//   - *Command: The immutable command
func Procedure(name string, opts ...Option) *Command {
	return build(name, types.KindStoredProcedure, opts)
}

func build(text string, kind types.CommandKind, opts []Option) *Command {
	c := &Command{text: text, kind: kind}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithParameter appends a fully specified parameter.
func WithParameter(p Parameter) Option {
	return func(c *Command) {
		c.params = append(c.params, p)
	}
}

// In appends an input parameter.
func In(name string, t types.LogicalType, value any) Option {
	return WithParameter(Parameter{Name: name, Type: t, Direction: types.DirectionInput, Value: value})
}

// Out appends an output parameter.
func Out(name string, t types.LogicalType) Option {
	return WithParameter(Parameter{Name: name, Type: t, Direction: types.DirectionOutput})
}

// OutSized appends an output parameter with a maximum size.
func OutSized(name string, t types.LogicalType, size int) Option {
	return WithParameter(Parameter{Name: name, Type: t, Direction: types.DirectionOutput, Size: size})
}

// InOut appends an input-output parameter.
func InOut(name string, t types.LogicalType, value any) Option {
	return WithParameter(Parameter{Name: name, Type: t, Direction: types.DirectionInputOutput, Value: value})
}

// RefCursor appends an output ref-cursor parameter. The cursor is drained as
// an additional result table, never reported as an output value.
func RefCursor(name string) Option {
	return WithParameter(Parameter{Name: name, Type: types.RefCursor, Direction: types.DirectionOutput})
}

// ReturnValue appends the procedure return-value parameter.
func ReturnValue(name string, t types.LogicalType) Option {
	return WithParameter(Parameter{Name: name, Type: t, Direction: types.DirectionReturnValue})
}

// WithTimeout overrides the executor's default command timeout for this command.
// Zero or negative values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Command) {
		c.timeout = d
	}
}

// Text returns the SQL text or procedure name.
func (c *Command) Text() string {
	return c.text
}

// Kind returns the command kind.
func (c *Command) Kind() types.CommandKind {
	return c.kind
}

// IsProcedure reports whether the command is a stored-procedure call.
func (c *Command) IsProcedure() bool {
	return c.kind == types.KindStoredProcedure
}

// Parameters returns a copy of the declared parameters in declaration order.
func (c *Command) Parameters() []Parameter {
	if len(c.params) == 0 {
		return nil
	}
	out := make([]Parameter, len(c.params))
	copy(out, c.params)

	return out
}

// Len returns the number of declared parameters.
func (c *Command) Len() int {
	return len(c.params)
}

// Parameter returns the i-th declared parameter.
func (c *Command) Parameter(i int) Parameter {
	return c.params[i]
}

// Timeout returns the timeout override, or 0 if none was set.
func (c *Command) Timeout() time.Duration {
	if c.timeout < 0 {
		return 0
	}

	return c.timeout
}

// Lookup returns the declared parameter matching name (prefix-stripped, case-insensitive).
func (c *Command) Lookup(name string) (Parameter, bool) {
	for _, p := range c.params {
		if EqualNames(p.Name, name) {
			return p, true
		}
	}

	return Parameter{}, false
}

// HasRefCursor reports whether any declared parameter is a ref cursor.
func (c *Command) HasRefCursor() bool {
	for _, p := range c.params {
		if p.Type == types.RefCursor {
			return true
		}
	}

	return false
}

// StripPrefix removes exactly one leading '@', ':' or '?' from name.
// Names without a recognized prefix are returned unchanged.
func StripPrefix(name string) string {
	if name == "" {
		return name
	}
	switch name[0] {
	case '@', ':', '?':
		return name[1:]
	default:
		return name
	}
}

// EqualNames reports whether two parameter names refer to the same parameter.
func EqualNames(a, b string) bool {
	return strings.EqualFold(StripPrefix(a), StripPrefix(b))
}
