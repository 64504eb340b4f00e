package subst

import (
	"strconv"
	"strings"

	"annogen/internal/source"
)

// Override is a location taken from an "@file:line$" prefix.
type Override struct {
	Pos source.Pos
	OK  bool
}

// Expand expands line at pos with the given bindings. A leading override
// prefix is stripped, applied to the rest of this one line and returned.
func Expand(line string, pos source.Pos, vars *Vars) (string, Override) {
	ov := Override{}
	if p, rest, ok := ParseOverride(line); ok {
		ov = Override{Pos: p, OK: true}
		pos = p
		line = rest
	}
	return expandTokens(line, pos, vars), ov
}

// ExpandVars replaces only $letter references; '@' and '#' stay literal.
func ExpandVars(line string, vars *Vars) string {
	if strings.IndexByte(line, '$') < 0 {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '$' && i+1 < len(line) && IsVarLetter(line[i+1]) {
			if val := vars.Get(line[i+1]); val != "" {
				b.WriteString(val)
				i++
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func expandTokens(line string, pos source.Pos, vars *Vars) string {
	if strings.IndexAny(line, "@#$") < 0 {
		return line
	}
	var b strings.Builder
	b.Grow(len(line) + 16)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '@':
			b.WriteString(MangleFile(pos.File))
		case c == '#' && i > 0:
			b.WriteString(strconv.Itoa(pos.Line))
		case c == '$' && i+1 < len(line) && IsVarLetter(line[i+1]):
			if val := vars.Get(line[i+1]); val != "" {
				b.WriteString(val)
				i++
			} else {
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// MangleFile upper-cases name and maps every non-alphanumeric character to '_'.
func MangleFile(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ParseOverride recognises the "@file:line$" prefix. The file part runs up to
// the first ":<digits>$", so it may hold spaces, drive letters or '$'.
func ParseOverride(line string) (source.Pos, string, bool) {
	if len(line) < 4 || line[0] != '@' {
		return source.Pos{}, line, false
	}
	for colon := 1; colon < len(line); colon++ {
		if line[colon] != ':' {
			continue
		}
		end := colon + 1
		for end < len(line) && line[end] >= '0' && line[end] <= '9' {
			end++
		}
		if end == colon+1 || end == len(line) || line[end] != '$' {
			continue
		}
		if colon == 1 {
			return source.Pos{}, line, false
		}
		n, err := strconv.Atoi(line[colon+1 : end])
		if err != nil {
			return source.Pos{}, line, false
		}
		return source.Pos{File: line[1:colon], Line: n}, line[end+1:], true
	}
	return source.Pos{}, line, false
}

// FormatOverride is the inverse of ParseOverride.
func FormatOverride(pos source.Pos) string {
	return "@" + pos.File + ":" + strconv.Itoa(pos.Line) + "$"
}
