package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Invariant layouts tried in order. Layouts without a zone parse as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999 -07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	time.RFC1123Z,
	time.RFC1123,
}

func parseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func toDateTime(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return parseDateTimeAny(x)
	case []byte:
		return parseDateTimeAny(string(x))
	default:
		return nil, false
	}
}

func parseDateTimeAny(s string) (any, bool) {
	t, ok := parseDateTime(s)
	if !ok {
		return nil, false
	}

	return t, true
}

// toDateTimeOffset keeps time values as-is (a time.Time always carries its
// offset) and parses strings, assigning UTC when the text has no offset.
func toDateTimeOffset(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		return parseDateTimeAny(x)
	case []byte:
		return parseDateTimeAny(string(x))
	default:
		return nil, false
	}
}

func toDuration(v any) (any, bool) {
	switch x := v.(type) {
	case time.Duration:
		return x, true
	case time.Time:
		h, m, s := x.Clock()
		return time.Duration(h)*time.Hour +
			time.Duration(m)*time.Minute +
			time.Duration(s)*time.Second +
			time.Duration(x.Nanosecond()), true
	case string:
		d, ok := parseDuration(x)
		if !ok {
			return nil, false
		}
		return d, true
	case []byte:
		d, ok := parseDuration(string(x))
		if !ok {
			return nil, false
		}
		return d, true
	default:
		return nil, false
	}
}

// clockPattern matches [-][d.]hh:mm[:ss[.fffffff]].
var clockPattern = regexp.MustCompile(`^(-)?(?:(\d+)\.)?(\d{1,2}):(\d{1,2})(?::(\d{1,2})(?:\.(\d{1,9}))?)?$`)

// pgIntervalPattern matches PostgreSQL interval output such as
// "3 days 04:05:06.5", "1 day", "-2 days -01:00:00".
var pgIntervalPattern = regexp.MustCompile(`^(-?\d+) days?(?: (.+))?$`)

// parseDuration accepts clock form, PostgreSQL day intervals and Go duration syntax.
func parseDuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if d, ok := parseClock(s); ok {
		return d, true
	}

	if m := pgIntervalPattern.FindStringSubmatch(s); m != nil {
		days, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		d := time.Duration(days) * 24 * time.Hour
		if m[2] != "" {
			rest, ok := parseClock(strings.TrimSpace(m[2]))
			if !ok {
				return 0, false
			}
			d += rest
		}

		return d, true
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}

	return d, true
}

func parseClock(s string) (time.Duration, bool) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	num := func(part string) int64 {
		if part == "" {
			return 0
		}
		n, _ := strconv.ParseInt(part, 10, 64)
		return n
	}

	hours, minutes, seconds := num(m[3]), num(m[4]), num(m[5])
	if hours > 23 || minutes > 59 || seconds > 59 {
		return 0, false
	}

	d := time.Duration(num(m[2]))*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second
	if frac := m[6]; frac != "" {
		frac += strings.Repeat("0", 9-len(frac))
		d += time.Duration(num(frac))
	}
	if m[1] == "-" {
		d = -d
	}

	return d, true
}

// formatDuration renders a duration in invariant clock form: [-][d.]hh:mm:ss[.fffffff].
func formatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	frac := d - s*time.Second

	out := sign
	if days > 0 {
		out += fmt.Sprintf("%d.", days)
	}
	out += fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if frac > 0 {
		out += strings.TrimRight(fmt.Sprintf(".%09d", frac), "0")
	}

	return out
}
