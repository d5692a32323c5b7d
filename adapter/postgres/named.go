package postgres

import (
	"strconv"
	"strings"

	sqladapter "github.com/arloliu/sqlexec/adapter/sql"
	"github.com/arloliu/sqlexec/command"
)

// rewriteNamed replaces :name placeholders that match a declared parameter
// with $n. Quoted text, comments and :: casts are left alone. A parameter used
// more than once keeps its first number. ok is false when no placeholder was
// found.
func rewriteNamed(text string, params []command.Parameter) (string, []any, bool) {
	if len(params) == 0 || !strings.Contains(text, ":") {
		return text, nil, false
	}

	byName := make(map[string]int, len(params))
	for i, p := range params {
		byName[strings.ToLower(p.StrippedName())] = i
	}

	var (
		sb       strings.Builder
		args     []any
		assigned = make(map[int]int)
	)
	sb.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(text, i, c)
			sb.WriteString(text[i:end])
			i = end
		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			sb.WriteString(text[i : i+end])
			i += end
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text)
			} else {
				end = i + 2 + end + 2
			}
			sb.WriteString(text[i:end])
			i = end
		case c == ':' && i+1 < len(text) && text[i+1] == ':':
			sb.WriteString("::")
			i += 2
		case c == ':' && i+1 < len(text) && isIdentStart(text[i+1]):
			j := i + 1
			for j < len(text) && isIdentPart(text[j]) {
				j++
			}
			idx, ok := byName[strings.ToLower(text[i+1:j])]
			if !ok {
				sb.WriteString(text[i:j])
				i = j
				continue
			}
			n, seen := assigned[idx]
			if !seen {
				args = append(args, sqladapter.ArgValue(params[idx].Value))
				n = len(args)
				assigned[idx] = n
			}
			sb.WriteString("$" + strconv.Itoa(n))
			i = j
		default:
			sb.WriteByte(c)
			i++
		}
	}

	if len(args) == 0 {
		return text, nil, false
	}

	return sb.String(), args, true
}

// skipQuoted returns the index just past the quoted section starting at i.
// A doubled quote character is an escaped quote.
func skipQuoted(text string, i int, q byte) int {
	for j := i + 1; j < len(text); j++ {
		if text[j] != q {
			continue
		}
		if j+1 < len(text) && text[j+1] == q {
			j++
			continue
		}

		return j + 1
	}

	return len(text)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
