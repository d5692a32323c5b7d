package normalize

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/arloliu/sqlexec/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// isCanonical reports whether v is already a canonical shape that also
// implements driver.Valuer and therefore must not be unwrapped.
func isCanonical(v any) bool {
	switch v.(type) {
	case uuid.UUID, decimal.Decimal:
		return true
	default:
		return false
	}
}

func toText(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	case []rune:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case time.Time:
		return x.Format(time.RFC3339Nano), true
	case time.Duration:
		return formatDuration(x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case fmt.Stringer:
		return x.String(), true
	}

	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10), true
	}
	if u, ok := asUint64(v); ok {
		return strconv.FormatUint(u, 10), true
	}

	return fmt.Sprint(v), true
}

func toNumeric(v any, t types.LogicalType) (any, bool) {
	switch t {
	case types.Boolean:
		return toBool(v)
	case types.Decimal, types.Currency:
		return toDecimal(v)
	case types.Double:
		f, ok := toFloat(v)
		return f, ok
	case types.Single:
		f, ok := toFloat(v)
		if !ok || (!math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32) {
			return nil, false
		}
		return float32(f), true
	case types.Byte:
		return toUnsigned(v, math.MaxUint8, func(u uint64) any { return uint8(u) })
	case types.UInt16:
		return toUnsigned(v, math.MaxUint16, func(u uint64) any { return uint16(u) })
	case types.UInt32:
		return toUnsigned(v, math.MaxUint32, func(u uint64) any { return uint32(u) })
	case types.UInt64:
		return toUnsigned(v, math.MaxUint64, func(u uint64) any { return u })
	case types.SByte:
		return toSigned(v, math.MinInt8, math.MaxInt8, func(i int64) any { return int8(i) })
	case types.Int16:
		return toSigned(v, math.MinInt16, math.MaxInt16, func(i int64) any { return int16(i) })
	case types.Int32:
		return toSigned(v, math.MinInt32, math.MaxInt32, func(i int64) any { return int32(i) })
	case types.Int64:
		return toSigned(v, math.MinInt64, math.MaxInt64, func(i int64) any { return i })
	default:
		return nil, false
	}
}

func toSigned(v any, lo, hi int64, cast func(int64) any) (any, bool) {
	i, ok := toInt64(v)
	if !ok || i < lo || i > hi {
		return nil, false
	}

	return cast(i), true
}

func toUnsigned(v any, hi uint64, cast func(uint64) any) (any, bool) {
	u, ok := toUint64(v)
	if !ok || u > hi {
		return nil, false
	}

	return cast(u), true
}

// toInt64 converts integers, whole-number strings, floats (banker's rounding),
// decimals and booleans.
func toInt64(v any) (int64, bool) {
	if i, ok := asInt64(v); ok {
		return i, true
	}
	if u, ok := asUint64(v); ok {
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}

	switch x := v.(type) {
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case decimal.Decimal:
		r := x.RoundBank(0).BigInt()
		if !r.IsInt64() {
			return 0, false
		}
		return r.Int64(), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return i, err == nil
	case []byte:
		i, err := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func toUint64(v any) (uint64, bool) {
	if u, ok := asUint64(v); ok {
		return u, true
	}
	if i, ok := asInt64(v); ok {
		if i < 0 {
			return 0, false
		}
		return uint64(i), true
	}

	switch x := v.(type) {
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(x), 10, 64)
		return u, err == nil
	case []byte:
		u, err := strconv.ParseUint(strings.TrimSpace(string(x)), 10, 64)
		return u, err == nil
	case decimal.Decimal:
		r := x.RoundBank(0)
		if r.IsNegative() || !r.BigInt().IsUint64() {
			return 0, false
		}
		return r.BigInt().Uint64(), true
	}

	i, ok := toInt64(v)
	if !ok || i < 0 {
		return 0, false
	}

	return uint64(i), true
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	r := math.RoundToEven(f)
	if r < math.MinInt64 || r >= math.MaxInt64 {
		return 0, false
	}

	return int64(r), true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		return f, err == nil
	}
	if i, ok := asInt64(v); ok {
		return float64(i), true
	}
	if u, ok := asUint64(v); ok {
		return float64(u), true
	}

	return 0, false
}

func toDecimal(v any) (any, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		return d, err == nil
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(x)))
		return d, err == nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		return decimal.NewFromFloat(x), true
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return decimal.NewFromFloat32(x), true
	case bool:
		if x {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	}
	if i, ok := asInt64(v); ok {
		return decimal.NewFromInt(i), true
	}
	if u, ok := asUint64(v); ok {
		return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0), true
	}

	return nil, false
}

func toBool(v any) (any, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	case []byte:
		b, err := strconv.ParseBool(strings.TrimSpace(string(x)))
		return b, err == nil
	case decimal.Decimal:
		return !x.IsZero(), true
	}
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) {
			return nil, false
		}
		return f != 0, true
	}

	return nil, false
}

// asInt64 accepts only signed integer kinds.
func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	default:
		return 0, false
	}
}

// asUint64 accepts only unsigned integer kinds.
func asUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	default:
		return 0, false
	}
}

func toGUID(v any) (any, bool) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, true
	case [16]byte:
		return uuid.UUID(x), true
	case []byte:
		if len(x) == 16 {
			id, err := uuid.FromBytes(x)
			return id, err == nil
		}
		// Some drivers report GUIDs as their text form.
		id, err := uuid.ParseBytes(x)
		return id, err == nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(x))
		return id, err == nil
	case fmt.Stringer:
		id, err := uuid.Parse(x.String())
		return id, err == nil
	default:
		return nil, false
	}
}

func toBinary(v any) (any, bool) {
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}

	return b, true
}
