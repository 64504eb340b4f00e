package diagfmt

import (
	"encoding/json"
	"io"
	"strings"

	"annogen/internal/diag"
)

type jsonNote struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Title    string     `json:"title"`
	File     string     `json:"file"`
	Line     int        `json:"line"`
	Message  string     `json:"message"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// JSON writes diagnostics as a single indented JSON array.
func JSON(w io.Writer, diags []diag.Diagnostic, opts JSONOpts) error {
	if opts.Max > 0 && len(diags) > opts.Max {
		diags = diags[:opts.Max]
	}
	out := make([]jsonDiagnostic, 0, len(diags))
	for _, d := range diags {
		jd := jsonDiagnostic{
			Severity: strings.ToLower(d.Severity.String()),
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			File:     d.Primary.File,
			Line:     d.Primary.Line,
			Message:  d.Message,
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				jd.Notes = append(jd.Notes, jsonNote{File: n.Pos.File, Line: n.Pos.Line, Message: n.Msg})
			}
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
