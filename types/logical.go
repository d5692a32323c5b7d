package types

import "strings"

// LogicalType is the closed, cross-backend type used for parameter declaration
// and value normalization.
type LogicalType int

// Logical types. The zero value is String.
const (
	String LogicalType = iota
	AnsiString
	StringFixed
	AnsiStringFixed
	Clob
	NClob
	JSON
	XML
	Byte
	SByte
	Int16
	Int32
	Int64
	UInt16
	UInt32
	UInt64
	Decimal
	Currency
	Double
	Single
	Boolean
	GUID
	Binary
	Blob
	// Timestamp is a row-version value (binary), not a date-time.
	Timestamp
	Date
	DateTime
	// DateTime2 is a high-precision date-time.
	DateTime2
	DateTimeOffset
	Time
	Interval
	RefCursor
	// Object is an opaque provider-specific type; values pass through unchanged.
	Object
)

var logicalTypeNames = [...]string{
	String:          "string",
	AnsiString:      "ansi-string",
	StringFixed:     "string-fixed",
	AnsiStringFixed: "ansi-string-fixed",
	Clob:            "clob",
	NClob:           "nclob",
	JSON:            "json",
	XML:             "xml",
	Byte:            "byte",
	SByte:           "sbyte",
	Int16:           "int16",
	Int32:           "int32",
	Int64:           "int64",
	UInt16:          "uint16",
	UInt32:          "uint32",
	UInt64:          "uint64",
	Decimal:         "decimal",
	Currency:        "currency",
	Double:          "double",
	Single:          "single",
	Boolean:         "boolean",
	GUID:            "guid",
	Binary:          "binary",
	Blob:            "blob",
	Timestamp:       "timestamp",
	Date:            "date",
	DateTime:        "datetime",
	DateTime2:       "datetime2",
	DateTimeOffset:  "datetimeoffset",
	Time:            "time",
	Interval:        "interval",
	RefCursor:       "refcursor",
	Object:          "object",
}

// String returns the configuration name of the LogicalType.
func (t LogicalType) String() string {
	if t >= 0 && int(t) < len(logicalTypeNames) {
		return logicalTypeNames[t]
	}

	return "unknown"
}

// ParseLogicalType converts a configuration name (as returned by String) into a LogicalType.
// Matching is case-insensitive; "_" and "-" are interchangeable.
func ParseLogicalType(s string) (LogicalType, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, n := range logicalTypeNames {
		if n == name {
			return LogicalType(i), true
		}
	}

	return Object, false
}

// IsText reports whether values of this type normalize to strings.
func (t LogicalType) IsText() bool {
	switch t {
	case String, AnsiString, StringFixed, AnsiStringFixed, Clob, NClob, JSON, XML:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether values of this type normalize to a numeric (or boolean) shape.
func (t LogicalType) IsNumeric() bool {
	switch t {
	case Byte, SByte, Int16, Int32, Int64, UInt16, UInt32, UInt64,
		Decimal, Currency, Double, Single, Boolean:
		return true
	default:
		return false
	}
}

// IsTemporal reports whether values of this type are dates, times or intervals.
func (t LogicalType) IsTemporal() bool {
	switch t {
	case Date, DateTime, DateTime2, DateTimeOffset, Time, Interval:
		return true
	default:
		return false
	}
}

// IsBinary reports whether values of this type are byte sequences.
func (t LogicalType) IsBinary() bool {
	return t == Binary || t == Blob || t == Timestamp
}
