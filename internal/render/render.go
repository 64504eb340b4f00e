package render

import (
	"bytes"
	"strconv"
	"strings"

	"annogen/internal/interp"
	"annogen/internal/store"
	"annogen/internal/subst"
)

// Options controls rendering.
type Options struct {
	// Header is written verbatim first; see NewHeader and ExtractHeader.
	Header string
}

// Render serialises st. The output is self-describing: scanning it in replay
// mode rebuilds an equivalent state, so rendering again yields the same bytes.
func Render(st *store.State, opts Options) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(opts.Header)

	for _, l := range st.Lists.All() {
		b.WriteByte('\n')
		writeList(&b, l)
	}
	for _, t := range st.Templates.All() {
		b.WriteByte('\n')
		writeTemplate(&b, t)
	}
	var vars subst.Vars
	for _, inv := range st.Invocations.All() {
		tpl, err := interp.Bind(st, inv, &vars)
		if err != nil {
			return nil, err
		}
		b.WriteByte('\n')
		writeInvocation(&b, inv, tpl, &vars)
	}

	b.WriteByte('\n')
	b.WriteString(Footer)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeList(b *bytes.Buffer, l *store.List) {
	b.WriteString("/*\n * List ")
	b.WriteString(l.Name)
	b.WriteString("\n * contributed by: ")
	b.WriteString(strings.Join(l.Contributors(), ", "))
	b.WriteString("\n */\n")

	b.WriteString("/*#\n#macro ADD_TO_LIST\n")
	b.WriteString(l.Name)
	b.WriteByte('\n')
	for _, it := range l.Items {
		b.WriteString(subst.FormatOverride(it.Pos))
		b.WriteString(it.Value)
		b.WriteByte('\n')
	}
	b.WriteString("#*/\n")

	b.WriteString("#define ")
	b.WriteString(l.Name)
	for _, it := range l.Items {
		b.WriteString(" \\\n\t")
		b.WriteString(it.Value)
		b.WriteString(", /* ")
		b.WriteString(it.Pos.String())
		b.WriteString(" */")
	}
	b.WriteByte('\n')
}

func writeTemplate(b *bytes.Buffer, t *store.Template) {
	b.WriteString("/*#\n#macro ALIAS_PLUS\n")
	b.WriteString(t.Name)
	b.WriteByte('(')
	for i, p := range t.Positionals {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteByte(p.Letter)
	}
	b.WriteString(")\n")
	b.WriteString(strconv.Itoa(len(t.Also)))
	b.WriteByte('\n')
	for _, a := range t.Also {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	b.WriteString(t.OutputName)
	b.WriteByte('\n')
	for _, line := range t.Body {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("#*/\n")
}

func writeInvocation(b *bytes.Buffer, inv store.Invocation, tpl *store.Template, vars *subst.Vars) {
	b.WriteString("/*#\n#macro INVOKE_ALIAS_PLUS\n")
	b.WriteString(inv.Name)
	b.WriteByte('\n')
	b.WriteString(subst.FormatOverride(inv.Pos))
	b.WriteByte('\n')
	b.WriteString(strconv.Itoa(len(inv.Args)))
	b.WriteByte('\n')
	for _, a := range inv.Args {
		if subst.NeedsQuote(a) {
			a = subst.Quote(a)
		}
		b.WriteString(a)
		b.WriteByte('\n')
	}
	b.WriteString("#*/\n")

	name, _ := subst.Expand(tpl.OutputName, inv.Pos, vars)
	b.WriteString("#define ")
	b.WriteString(strings.TrimSpace(name))
	for _, line := range tpl.Body {
		text, _ := subst.Expand(line, inv.Pos, vars)
		b.WriteString(" \\\n\t")
		b.WriteString(text)
	}
	b.WriteByte('\n')
}
