package main

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/sqlexec/command"
	"github.com/arloliu/sqlexec/normalize"
	"github.com/arloliu/sqlexec/types"
)

// parseParam turns a --param flag value into a parameter option.
//
// Forms (the type defaults to String for inputs):
//
//	in:name[:type]=value
//	out:name:type[:size]
//	inout:name:type=value
//	cursor:name
//	return:name:type
//
// Values are converted to the declared type; binary values are hex with an
// optional 0x prefix. The literal value "null" binds a NULL.
func parseParam(raw string) (command.Option, error) {
	dir, rest, ok := strings.Cut(raw, ":")
	if !ok || rest == "" {
		return nil, fmt.Errorf("invalid parameter %q: want direction:name[...]", raw)
	}

	decl, value, hasValue := strings.Cut(rest, "=")
	parts := strings.Split(decl, ":")
	name := parts[0]
	if name == "" {
		return nil, fmt.Errorf("invalid parameter %q: empty name", raw)
	}

	typ := types.String
	if len(parts) > 1 {
		t, ok := types.ParseLogicalType(parts[1])
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q: unknown type %q", raw, parts[1])
		}
		typ = t
	}

	var v any
	if hasValue && !strings.EqualFold(value, "null") {
		out := normalize.Normalize(value, typ)
		switch {
		case typ.IsBinary():
			b, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(value), "0x"))
			if err != nil {
				return nil, fmt.Errorf("invalid parameter %q: binary values are hex: %w", raw, err)
			}
			v = b
		case out.Converted:
			v = out.Value
		case typ == types.Object:
			v = value
		default:
			return nil, fmt.Errorf("invalid parameter %q: %q is not a valid %s", raw, value, typ)
		}
	}

	switch strings.ToLower(dir) {
	case "in":
		if !hasValue {
			return nil, fmt.Errorf("invalid parameter %q: input needs =value", raw)
		}
		return command.In(name, typ, v), nil
	case "inout":
		if !hasValue || len(parts) < 2 {
			return nil, fmt.Errorf("invalid parameter %q: want inout:name:type=value", raw)
		}
		return command.InOut(name, typ, v), nil
	case "out":
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid parameter %q: want out:name:type[:size]", raw)
		}
		if len(parts) > 2 {
			size, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid parameter %q: bad size: %w", raw, err)
			}
			return command.OutSized(name, typ, size), nil
		}
		return command.Out(name, typ), nil
	case "cursor":
		return command.RefCursor(name), nil
	case "return":
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid parameter %q: want return:name:type", raw)
		}
		return command.ReturnValue(name, typ), nil
	default:
		return nil, fmt.Errorf("invalid parameter %q: unknown direction %q", raw, dir)
	}
}

// commandOptions collects the flags shared by query and exec.
type commandOptions struct {
	params    []string
	procedure bool
	timeout   time.Duration
}

// build creates the command for text.
func (o *commandOptions) build(text string) (*command.Command, error) {
	opts := make([]command.Option, 0, len(o.params)+1)
	for _, p := range o.params {
		opt, err := parseParam(p)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	if o.timeout > 0 {
		opts = append(opts, command.WithTimeout(o.timeout))
	}

	if o.procedure {
		return command.Procedure(text, opts...), nil
	}

	return command.New(text, opts...), nil
}
