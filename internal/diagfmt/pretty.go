package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"

	"annogen/internal/diag"
	"annogen/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<path>:<line>: <severity>[<CODE>]: <message>
//	   | <source line>
//	   = note: <path>:<line>: <msg>
//
// The source line is shown only when the file was loaded into fs.
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	locColor := color.New(color.Bold)
	noteColor := color.New(color.FgBlue)
	for _, c := range []*color.Color{sevColor[diag.SevError], sevColor[diag.SevWarning], sevColor[diag.SevInfo], locColor, noteColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, d := range diags {
		sev := strings.ToLower(d.Severity.String())
		fmt.Fprintf(w, "%s: %s: %s\n",
			locColor.Sprint(d.Primary.String()),
			sevColor[d.Severity].Sprintf("%s[%s]", sev, d.Code.ID()),
			d.Message)
		if opts.ShowSource {
			if line, ok := sourceLine(fs, d.Primary); ok {
				fmt.Fprintf(w, "   | %s\n", line)
			}
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "   = %s %s: %s\n", noteColor.Sprint("note:"), n.Pos, n.Msg)
			}
		}
	}
}

func sourceLine(fs *source.FileSet, pos source.Pos) (string, bool) {
	if fs == nil || pos.File == "" || pos.Line <= 0 {
		return "", false
	}
	id, ok := fs.GetLatest(pos.File)
	if !ok {
		return "", false
	}
	line, err := safecast.Conv[uint32](pos.Line)
	if err != nil {
		return "", false
	}
	text := fs.Get(id).GetLine(line)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
