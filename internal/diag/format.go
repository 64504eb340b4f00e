package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line:
//
//	error SCN1001 mod.c:12 unknown command "FOO"
//
// Notes follow their diagnostic as "note" lines. The order is preserved.
func FormatShort(diags []Diagnostic) string {
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s", severityLabel(d.Severity), d.Code.ID(), d.Primary, oneLine(d.Message))
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "\nnote %s %s %s", d.Code.ID(), n.Pos, oneLine(n.Msg))
		}
	}
	return b.String()
}

func severityLabel(sev Severity) string {
	return strings.ToLower(sev.String())
}

func oneLine(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
