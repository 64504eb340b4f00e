package subst

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned by SplitArgs for an unbalanced '"'.
var ErrUnterminatedQuote = errors.New("unterminated quoted argument")

// SplitArgs splits s on commas and whitespace. A double-quoted substring is one
// atomic token; inside it \" and \\ are unescaped. Empty unquoted fields
// (e.g. from ", ,") are skipped, an explicit "" yields an empty argument.
func SplitArgs(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		have    bool
		inQuote bool
	)
	flush := func() {
		if have {
			out = append(out, cur.String())
		}
		cur.Reset()
		have = false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inQuote {
			switch {
			case c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\'):
				cur.WriteByte(s[i+1])
				i++
			case c == '"':
				inQuote = false
			default:
				cur.WriteByte(c)
			}
			continue
		}
		switch c {
		case '"':
			inQuote = true
			have = true
		case ',', ' ', '\t':
			flush()
		default:
			cur.WriteByte(c)
			have = true
		}
	}
	if inQuote {
		return nil, ErrUnterminatedQuote
	}
	flush()
	return out, nil
}

// NeedsQuote reports whether s would not survive a trim/SplitArgs round trip.
func NeedsQuote(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	return strings.ContainsAny(s, "\", \t")
}

// Quote wraps s in double quotes, escaping '"' and '\'.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// UnquoteLine trims line and, when it is exactly one quoted token, unquotes it.
func UnquoteLine(line string) (string, error) {
	t := strings.TrimSpace(line)
	if len(t) < 2 || t[0] != '"' {
		return t, nil
	}
	args, err := SplitArgs(t)
	if err != nil {
		return "", err
	}
	if len(args) != 1 || Quote(args[0]) != t {
		return t, nil
	}
	return args[0], nil
}
