// Package cstr renders arbitrary bytes as the body of a C string literal.
package cstr

import "strings"

// Escape returns b with every byte spelled the way a C compiler reads it back
// inside double quotes. Control and non-ASCII bytes use three-digit octal
// escapes so a following digit can never extend them.
func Escape(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		writeByte(&sb, c)
	}
	return sb.String()
}

// EscapeString is Escape for strings.
func EscapeString(s string) string {
	return Escape([]byte(s))
}

// Quote wraps the escaped form of s in double quotes.
func Quote(s string) string {
	return `"` + EscapeString(s) + `"`
}

func writeByte(sb *strings.Builder, c byte) {
	switch c {
	case '\r':
		sb.WriteString(`\r`)
	case '\n':
		sb.WriteString(`\n`)
	case '\t':
		sb.WriteString(`\t`)
	case 0:
		sb.WriteString(`\0`)
	case '"':
		sb.WriteString(`\"`)
	case '\\':
		sb.WriteString(`\\`)
	default:
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
			return
		}
		sb.WriteByte('\\')
		sb.WriteByte('0' + c>>6)
		sb.WriteByte('0' + c>>3&7)
		sb.WriteByte('0' + c&7)
	}
}
