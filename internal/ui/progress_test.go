package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"annogen/internal/pipeline"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("annogen", []string{"a.c", "b.c"}, events).(*batchModel)

	m.apply(pipeline.Event{Stage: pipeline.StageLock, Status: pipeline.StatusWorking})
	if m.stages[0].status != pipeline.StatusWorking {
		t.Errorf("lock status = %q", m.stages[0].status)
	}
	m.apply(pipeline.Event{Stage: pipeline.StageLock, Status: pipeline.StatusDone, Elapsed: time.Millisecond})
	m.apply(pipeline.Event{File: "a.c", Stage: pipeline.StageScan, Status: pipeline.StatusWorking})
	m.apply(pipeline.Event{File: "b.c", Stage: pipeline.StageScan, Status: pipeline.StatusDone, Elapsed: 2 * time.Millisecond})
	m.apply(pipeline.Event{File: "unknown.c", Stage: pipeline.StageScan, Status: pipeline.StatusDone})

	if got := fileStatus(m.files[0]); got != "scanning" {
		t.Errorf("a.c = %q", got)
	}
	if got := fileStatus(m.files[1]); got != "scanned" {
		t.Errorf("b.c = %q", got)
	}
	view := m.View()
	for _, want := range []string{"annogen", "lock", "scanning", "scanned", "a.c", "b.c", "2ms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestProgressFraction(t *testing.T) {
	m := NewProgressModel("annogen", []string{"a.c", "b.c"}, nil).(*batchModel)
	if got := m.fraction(); got != 0 {
		t.Fatalf("fresh fraction = %v", got)
	}
	m.apply(pipeline.Event{Stage: pipeline.StageLock, Status: pipeline.StatusDone})
	m.apply(pipeline.Event{Stage: pipeline.StageSnapshot, Status: pipeline.StatusSkipped})
	m.apply(pipeline.Event{File: "a.c", Stage: pipeline.StageScan, Status: pipeline.StatusDone})
	m.apply(pipeline.Event{File: "b.c", Stage: pipeline.StageLoad, Status: pipeline.StatusDone})

	// lock and snapshot whole, load 2/2, scan 1/2
	want := (2 + 1 + 0.5) / float64(len(pipeline.Stages))
	if got := m.fraction(); got != want {
		t.Errorf("fraction = %v, want %v", got, want)
	}
}

func TestProgressShowsFailure(t *testing.T) {
	m := NewProgressModel("annogen", []string{"a.c"}, nil).(*batchModel)
	m.apply(pipeline.Event{File: "a.c", Stage: pipeline.StageScan, Status: pipeline.StatusError, Err: errors.New("a.c:3: unknown command")})
	m.apply(pipeline.Event{Stage: pipeline.StageScan, Status: pipeline.StatusDone})

	if m.stages[3].status != pipeline.StatusError {
		t.Errorf("scan stage = %q, want error to stick", m.stages[3].status)
	}
	view := m.View()
	for _, want := range []string{"failed", "a.c:3: unknown command"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestUnchangedOutput(t *testing.T) {
	m := NewProgressModel("annogen", nil, nil).(*batchModel)
	m.apply(pipeline.Event{Stage: pipeline.StageWrite, Status: pipeline.StatusSkipped})
	if !strings.Contains(m.View(), "unchanged") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.c", 20, "short.c"},
		{"very/long/path/to/file.c", 10, ".../file.c"},
		{"abcdef", 3, "def"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
