package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Format is how a stream or a dump renders events.
type Format uint8

const (
	FormatAuto   Format = iota // NDJSON for a .ndjson or .json path, text otherwise
	FormatText
	FormatNDJSON
)

// ParseFormat parses a --trace-format value; "json" is accepted for ndjson.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

var processStart = time.Now()

// FormatEvent renders ev as one line, newline included.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil
		}
		return append(data, '\n')
	}
	return formatText(ev)
}

var kindMarks = []string{KindSpanBegin: "→", KindSpanEnd: "←", KindPoint: "•", KindHeartbeat: "♡"}

// formatText renders "[  12.345ms]     → block @ mod.c:12 (detail) {k=v}",
// indented two columns per scope below the run.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	ms := float64(ev.Time.Sub(processStart)) / float64(time.Millisecond)
	fmt.Fprintf(&sb, "[%9.3fms] ", ms)
	if ev.Scope > ScopeRun {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeRun)))
	}
	if int(ev.Kind) < len(kindMarks) && kindMarks[ev.Kind] != "" {
		sb.WriteString(kindMarks[ev.Kind])
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if ev.Pos != "" {
		sb.WriteString(" @ " + ev.Pos)
	}
	if ev.Detail != "" {
		sb.WriteString(" (" + ev.Detail + ")")
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for k, v := range ev.Extra {
			pairs = append(pairs, k+"="+v)
		}
		slices.Sort(pairs)
		sb.WriteString(" {" + strings.Join(pairs, ", ") + "}")
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
