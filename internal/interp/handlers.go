package interp

import (
	"strconv"
	"strings"

	"annogen/internal/command"
	"annogen/internal/diag"
	"annogen/internal/source"
	"annogen/internal/store"
	"annogen/internal/subst"
)

// ADD_TO_LIST: name line, then one value per line.
type listStep uint8

const (
	listName listStep = iota
	listValues
)

type addToList struct {
	in   *Interp
	vars *subst.Vars
	step listStep
	list *store.List
}

func (h *addToList) Kind() command.Kind { return command.KindAddToList }

func (h *addToList) Feed(line Line) error {
	text, ov := h.expand(line)
	text = strings.TrimSpace(text)
	switch h.step {
	case listName:
		if text == "" {
			return diag.Errorf(diag.CmdEmptyName, line.Pos, "ADD_TO_LIST needs a list name")
		}
		if len(text) > h.in.opts.MaxName {
			return errNameTooLong(line.Pos, "list name", len(text), h.in.opts.MaxName)
		}
		h.list = h.in.state.Lists.Get(text)
		h.step = listValues
	case listValues:
		if text == "" {
			return nil
		}
		pos := line.Pos
		if ov.OK {
			pos = ov.Pos
		}
		h.list.Add(text, pos)
	}
	return nil
}

func (h *addToList) expand(line Line) (string, subst.Override) {
	if !line.Verbatim {
		return subst.Expand(line.Text, line.Pos, h.vars)
	}
	if p, rest, ok := subst.ParseOverride(line.Text); ok {
		return rest, subst.Override{Pos: p, OK: true}
	}
	return line.Text, subst.Override{}
}

func (h *addToList) Finish(end source.Pos) error {
	if h.step == listName {
		return errIncomplete(end, "ADD_TO_LIST", "list name")
	}
	return nil
}

// ALIAS_PLUS: header, also-count, also-lines, output name, body.
type aliasStep uint8

const (
	aliasHeader aliasStep = iota
	aliasAlsoCount
	aliasAlso
	aliasOutput
	aliasBody
)

type aliasPlus struct {
	in       *Interp
	step     aliasStep
	tpl      *store.Template
	alsoLeft int
}

func (h *aliasPlus) Kind() command.Kind { return command.KindAliasPlus }

func (h *aliasPlus) Feed(line Line) error {
	switch h.step {
	case aliasHeader:
		name, letters, err := ParseAliasHeader(line.Text)
		if err != nil {
			return diag.Errorf(diag.CmdBadAliasHeader, line.Pos, "%v", err)
		}
		if len(name) > h.in.opts.MaxName {
			return errNameTooLong(line.Pos, "template name", len(name), h.in.opts.MaxName)
		}
		h.tpl = h.in.state.Templates.Declare(name)
		for _, l := range letters {
			h.tpl.AddPositional(l)
		}
		h.step = aliasAlsoCount
	case aliasAlsoCount:
		text := strings.TrimSpace(line.Text)
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return errBadCount(line.Pos, "also-line count", text)
		}
		h.alsoLeft = n
		h.step = aliasAlso
		if n == 0 {
			h.step = aliasOutput
		}
	case aliasAlso:
		raw := strings.TrimSpace(line.Text)
		if err := h.checkAlso(raw, line.Pos); err != nil {
			return err
		}
		h.tpl.Also = append(h.tpl.Also, raw)
		h.alsoLeft--
		if h.alsoLeft == 0 {
			h.step = aliasOutput
		}
	case aliasOutput:
		text := strings.TrimSpace(line.Text)
		if text == "" {
			return diag.Errorf(diag.CmdEmptyName, line.Pos, "alias template %q needs an output macro name", h.tpl.Name)
		}
		if len(text) > h.in.opts.MaxName {
			return errNameTooLong(line.Pos, "output macro name", len(text), h.in.opts.MaxName)
		}
		h.tpl.OutputName = text
		h.step = aliasBody
	case aliasBody:
		h.tpl.Body = append(h.tpl.Body, strings.TrimRight(line.Text, " \t"))
	}
	return nil
}

func (h *aliasPlus) checkAlso(raw string, pos source.Pos) error {
	toks, err := subst.SplitArgs(raw)
	if err != nil {
		return errBadAlso(pos, raw, err.Error())
	}
	if len(toks) == 0 {
		return errBadAlso(pos, raw, "empty command")
	}
	if _, ok := h.in.opts.Dispatcher.Lookup(toks[0]); !ok {
		return errBadAlso(pos, raw, "unknown command "+toks[0])
	}
	return nil
}

func (h *aliasPlus) Finish(end source.Pos) error {
	switch h.step {
	case aliasHeader:
		return errIncomplete(end, "ALIAS_PLUS", "header")
	case aliasAlsoCount:
		return errIncomplete(end, "ALIAS_PLUS", "also-line count")
	case aliasAlso:
		return errIncomplete(end, "ALIAS_PLUS", strconv.Itoa(h.alsoLeft)+" remaining also-line(s)")
	case aliasOutput:
		return errIncomplete(end, "ALIAS_PLUS", "output macro name")
	}
	return nil
}

// ParseAliasHeader splits "name($a, $b)" into the template name and its
// parameter letters in order.
func ParseAliasHeader(text string) (string, []byte, error) {
	text = strings.TrimSpace(text)
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return "", nil, errHeader(text, "expected name($a, $b, ...)")
	}
	name := strings.TrimSpace(text[:open])
	if !IsIdent(name) {
		return "", nil, errHeader(text, "template name must be an identifier")
	}
	inner := text[open+1 : len(text)-1]
	var letters []byte
	for _, f := range strings.FieldsFunc(inner, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
		if len(f) != 2 || f[0] != '$' || !subst.IsVarLetter(f[1]) {
			return "", nil, errHeader(text, "parameter "+strconv.Quote(f)+" is not $<letter>")
		}
		letters = append(letters, f[1])
	}
	return name, letters, nil
}

type headerError struct{ text, why string }

func (e *headerError) Error() string { return "bad alias header " + strconv.Quote(e.text) + ": " + e.why }

func errHeader(text, why string) error { return &headerError{text: text, why: why} }

// IsIdent reports whether s is a C identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsIdentByte(s[i]) || (i == 0 && s[i] >= '0' && s[i] <= '9') {
			return false
		}
	}
	return true
}

// IsIdentByte reports whether c may appear in a C identifier.
func IsIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// INVOKE_ALIAS_PLUS: name, optional override, count, arguments.
type invokeStep uint8

const (
	invokeName invokeStep = iota
	invokeOverrideOrCount
	invokeArgs
	invokeDone
)

type invokeAlias struct {
	in   *Interp
	vars *subst.Vars
	pos  source.Pos
	step invokeStep
	inv  store.Invocation
	want int

	overridden bool
}

func (h *invokeAlias) Kind() command.Kind { return command.KindInvokeAliasPlus }

func (h *invokeAlias) Feed(line Line) error {
	switch h.step {
	case invokeName:
		name := strings.TrimSpace(subst.ExpandVars(line.Text, h.vars))
		if name == "" {
			return diag.Errorf(diag.CmdEmptyName, line.Pos, "INVOKE_ALIAS_PLUS needs a template name")
		}
		if len(name) > h.in.opts.MaxName {
			return errNameTooLong(line.Pos, "template name", len(name), h.in.opts.MaxName)
		}
		h.inv = store.Invocation{Name: name, Pos: h.pos}
		h.step = invokeOverrideOrCount
	case invokeOverrideOrCount:
		text := strings.TrimSpace(line.Text)
		if strings.HasPrefix(text, "@") {
			p, rest, ok := subst.ParseOverride(text)
			if !ok || strings.TrimSpace(rest) != "" {
				return diag.Errorf(diag.CmdBadOverride, line.Pos, "bad location override %q, expected @file:line$", text)
			}
			if h.overridden {
				return diag.Errorf(diag.CmdBadOverride, line.Pos, "second location override %q", text)
			}
			h.inv.Pos = p
			h.overridden = true
			return nil
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return errBadCount(line.Pos, "argument count", text)
		}
		h.want = n
		h.step = invokeArgs
		if n == 0 {
			h.step = invokeDone
		}
	case invokeArgs:
		arg := line.Text
		if !line.Literal {
			var err error
			if arg, err = subst.UnquoteLine(arg); err != nil {
				return diag.Errorf(diag.CmdBadArgument, line.Pos, "argument %d: %v", len(h.inv.Args)+1, err)
			}
		}
		h.inv.Args = append(h.inv.Args, subst.ExpandVars(arg, h.vars))
		if len(h.inv.Args) == h.want {
			h.step = invokeDone
		}
	case invokeDone:
		return diag.Errorf(diag.CmdArgCountMismatch, line.Pos,
			"invocation of %q declares %d argument(s) but supplies more", h.inv.Name, h.want)
	}
	return nil
}

func (h *invokeAlias) Finish(end source.Pos) error {
	switch h.step {
	case invokeName:
		return errIncomplete(end, "INVOKE_ALIAS_PLUS", "template name")
	case invokeOverrideOrCount:
		return errIncomplete(end, "INVOKE_ALIAS_PLUS", "argument count")
	case invokeArgs:
		return diag.Errorf(diag.CmdArgCountMismatch, end,
			"invocation of %q declares %d argument(s) but supplies %d", h.inv.Name, h.want, len(h.inv.Args))
	}
	h.in.state.Invocations.Add(h.inv)
	return nil
}
