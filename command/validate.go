package command

import (
	"fmt"
	"strings"

	"github.com/arloliu/sqlexec/types"
)

// ValidateStructure runs the checks every command must pass regardless of
// configuration: non-empty text and unique stripped parameter names.
//
// Returns:
//   - error: A validation *types.CanonicalError, or nil
func (c *Command) ValidateStructure() error {
	return finish(c.structural(nil))
}

// Validate runs the structural checks plus declaration checks: empty names,
// negative sizes, misdirected ref cursors and duplicate return values.
//
// Every problem is reported, not just the first.
//
// Returns:
//   - error: A validation *types.CanonicalError, or nil
func (c *Command) Validate() error {
	fields := c.structural(nil)

	returns := 0
	for i, p := range c.params {
		field := fmt.Sprintf("parameters[%d]", i)
		if StripPrefix(strings.TrimSpace(p.Name)) == "" {
			fields = append(fields, types.FieldError{Field: field + ".name", Message: "must not be empty"})
		}
		if p.Size < 0 {
			fields = append(fields, types.FieldError{Field: field + ".size", Message: "must not be negative"})
		}
		if p.Type == types.RefCursor {
			if p.Direction == types.DirectionInput || p.Direction == types.DirectionReturnValue {
				fields = append(fields, types.FieldError{
					Field:   field + ".direction",
					Message: "ref cursor must be an output parameter",
				})
			}
			if c.kind == types.KindText {
				fields = append(fields, types.FieldError{
					Field:   field + ".type",
					Message: "ref cursor requires a stored-procedure command",
				})
			}
		}
		if p.Direction == types.DirectionReturnValue {
			returns++
			if returns == 2 {
				fields = append(fields, types.FieldError{
					Field:   field + ".direction",
					Message: "only one return value parameter is allowed",
				})
			}
		}
	}

	return finish(fields)
}

func (c *Command) structural(fields []types.FieldError) []types.FieldError {
	if strings.TrimSpace(c.text) == "" {
		fields = append(fields, types.FieldError{Field: "text", Message: "must not be empty"})
	}

	seen := make(map[string]int, len(c.params))
	for i, p := range c.params {
		key := strings.ToLower(StripPrefix(p.Name))
		if key == "" {
			continue
		}
		if first, ok := seen[key]; ok {
			fields = append(fields, types.FieldError{
				Field:   fmt.Sprintf("parameters[%d].name", i),
				Message: fmt.Sprintf("duplicate of parameters[%d] (%q)", first, key),
			})

			continue
		}
		seen[key] = i
	}

	return fields
}

func finish(fields []types.FieldError) error {
	if len(fields) == 0 {
		return nil
	}

	return types.NewValidationError(fields...)
}
