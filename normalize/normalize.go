// Package normalize provides best-effort coercion of raw provider values into a
// canonical Go shape per declared logical type.
//
// Normalization is advisory: it never panics and never returns an error. When
// a value cannot be converted, the original raw value is returned unchanged and
// Outcome.Converted is false. Callers must not assume the result has the
// canonical type.
//
// Canonical shapes:
//
//	text family                    string
//	Byte / SByte                   uint8 / int8
//	Int16 / Int32 / Int64          int16 / int32 / int64
//	UInt16 / UInt32 / UInt64       uint16 / uint32 / uint64
//	Double / Single                float64 / float32
//	Boolean                        bool
//	Decimal / Currency             decimal.Decimal
//	GUID                           uuid.UUID
//	Binary / Blob / Timestamp      []byte (passthrough only)
//	Date / DateTime / DateTime2    time.Time
//	DateTimeOffset                 time.Time (UTC when no offset is known)
//	Time / Interval                time.Duration
//
// Any other logical type is returned unchanged.
package normalize

import (
	"database/sql/driver"
	"reflect"

	"github.com/arloliu/sqlexec/types"
)

// Outcome is the tagged result of one normalization.
type Outcome struct {
	// Value is the normalized value, or the raw value when Converted is false.
	Value any

	// Converted is false when the raw value was passed through unchanged
	// because no conversion applied or the conversion failed.
	Converted bool
}

// Normalize converts raw into the canonical shape for t.
//
// Null inputs (nil, typed nil pointers, types.DBNull, and driver.Valuer values
// reporting nil) normalize to nil for every logical type.
//
// Parameters:
//   - raw: The provider value
//   - t: The declared logical type
//
// Returns:
//   - Outcome: The normalized value and whether a conversion happened
func Normalize(raw any, t types.LogicalType) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Value: raw, Converted: false}
		}
	}()

	v, null := unwrap(raw)
	if null {
		return Outcome{Value: nil, Converted: true}
	}

	var (
		conv any
		ok   bool
	)
	switch {
	case t.IsText():
		conv, ok = toText(v)
	case t.IsNumeric():
		conv, ok = toNumeric(v, t)
	case t == types.GUID:
		conv, ok = toGUID(v)
	case t.IsBinary():
		conv, ok = toBinary(v)
	case t == types.Date, t == types.DateTime, t == types.DateTime2:
		conv, ok = toDateTime(v)
	case t == types.DateTimeOffset:
		conv, ok = toDateTimeOffset(v)
	case t == types.Time, t == types.Interval:
		conv, ok = toDuration(v)
	default:
		return Outcome{Value: raw, Converted: false}
	}

	if !ok {
		return Outcome{Value: raw, Converted: false}
	}

	return Outcome{Value: conv, Converted: true}
}

// Value is Normalize(raw, t).Value.
func Value(raw any, t types.LogicalType) any {
	return Normalize(raw, t).Value
}

// Nullable normalizes raw and returns a pointer to the result when it has the
// runtime shape T. It returns nil for null inputs and for shape mismatches.
//
// Example:
//
//	total := normalize.Nullable[decimal.Decimal](raw, types.Decimal)
//	if total != nil { ... }
func Nullable[T any](raw any, t types.LogicalType) *T {
	v := Value(raw, t)
	if v == nil {
		return nil
	}
	typed, ok := v.(T)
	if !ok {
		return nil
	}

	return &typed
}

// IsNull reports whether raw represents SQL NULL.
func IsNull(raw any) bool {
	_, null := unwrap(raw)

	return null
}

// unwrap resolves null sentinels, dereferences pointers and unwraps
// database/sql Null* style valuers.
func unwrap(raw any) (any, bool) {
	if types.IsNull(raw) {
		return nil, true
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, true
		}
		rv = rv.Elem()
	}
	v := rv.Interface()
	if types.IsNull(v) {
		return nil, true
	}

	if valuer, ok := v.(driver.Valuer); ok && !isCanonical(v) {
		dv, err := valuer.Value()
		if err != nil {
			return v, false
		}
		if dv == nil {
			return nil, true
		}

		return dv, false
	}

	return v, false
}
