package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind says whether an event opens a span, closes one or stands alone.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = []string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}

func (k Kind) String() string { return nameOf(kindNames, int(k)) }

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Scope is the granularity of an event. Coarser scopes have lower values, and
// Level filters on that order.
type Scope uint8

const (
	ScopeRun   Scope = iota + 1 // one invocation
	ScopePhase                  // lock, snapshot, load, scan, drain, render, write
	ScopeFile                   // one source or the output
	ScopeBlock                  // one annotation block
)

var scopeNames = []string{ScopeRun: "run", ScopePhase: "phase", ScopeFile: "file", ScopeBlock: "block"}

func (s Scope) String() string { return nameOf(scopeNames, int(s)) }

func (s Scope) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Event is one trace record. Its JSON form is the NDJSON line.
type Event struct {
	Time     time.Time         `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     Kind              `json:"kind"`
	Scope    Scope             `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`             // "run", a stage, "scan", "block"
	Pos      string            `json:"pos,omitempty"`    // where a file or block span opened, e.g. "mod.c:12"
	Detail   string            `json:"detail,omitempty"` // file name, output path, error text
	Extra    map[string]string `json:"extra,omitempty"`
}

func nameOf(names []string, i int) string {
	if i <= 0 || i >= len(names) || names[i] == "" {
		return "unknown"
	}
	return names[i]
}

// parseName finds s in names, ignoring case.
func parseName(names []string, s, what string) (int, error) {
	for i, name := range names {
		if name != "" && strings.EqualFold(s, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s: %q (expected: %s)", what, s, strings.Join(nonEmpty(names), "|"))
}

func nonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
