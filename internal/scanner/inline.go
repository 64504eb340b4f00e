package scanner

import (
	"annogen/internal/diag"
	"annogen/internal/interp"
	"annogen/internal/source"
	"annogen/internal/store"
	"annogen/internal/subst"
)

// detectInline records every "template(args)" call in one logical code line.
// Comments have already been blanked out of code.
func (s *scanner) detectInline(code string, line int) error {
	pos := source.Pos{File: s.file, Line: line}
	var quote byte
	for i := 0; i < len(code); i++ {
		c := code[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if !interp.IsIdentByte(c) || (i > 0 && interp.IsIdentByte(code[i-1])) {
			continue
		}
		j := i
		for j < len(code) && interp.IsIdentByte(code[j]) {
			j++
		}
		name := code[i:j]
		if j >= len(code) || code[j] != '(' || !interp.IsIdent(name) || !s.in.HasTemplate(name) {
			i = j - 1
			continue
		}
		end, ok := matchParen(code, j)
		if !ok {
			i = j - 1
			continue
		}
		args, err := subst.SplitArgs(code[j+1 : end])
		if err != nil {
			return diag.Errorf(diag.CmdBadArgument, pos, "arguments of %s(...): %v", name, err)
		}
		s.in.Invoke(store.Invocation{Name: name, Pos: pos, Args: args})
		s.stats.Inline++
		s.observe(Event{Kind: EventInline, Pos: pos, Text: name, Args: args})
		i = end
	}
	return nil
}

// matchParen returns the index of the ')' closing the '(' at open, skipping
// nested parentheses and quoted text.
func matchParen(code string, open int) (int, bool) {
	depth := 0
	var quote byte
	for i := open; i < len(code); i++ {
		c := code[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
