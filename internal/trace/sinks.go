package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// Nop records nothing. New returns it for LevelOff.
var Nop Tracer = nop{}

type nop struct{}

func (nop) Emit(*Event)   {}
func (nop) Flush() error  { return nil }
func (nop) Close() error  { return nil }
func (nop) Level() Level  { return LevelOff }
func (nop) Enabled() bool { return false }

// StreamTracer writes each event as it arrives. Output is buffered unless the
// destination is a terminal stream, so a file trace costs one write per
// buffer, not per event.
type StreamTracer struct {
	mu     sync.Mutex
	dst    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
}

// NewStreamTracer writes events at level and above to w.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{dst: w, level: level, format: format}
	if !isStdio(w) {
		t.buf = bufio.NewWriter(w)
	}
	return t
}

func isStdio(w io.Writer) bool { return w == os.Stderr || w == os.Stdout }

func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	line := FormatEvent(ev, t.format)
	t.mu.Lock()
	defer t.mu.Unlock()
	// a broken trace sink never fails the run
	if t.buf != nil {
		_, _ = t.buf.Write(line)
		return
	}
	_, _ = t.dst.Write(line)
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.buf == nil {
		return nil
	}
	return t.buf.Flush()
}

// Close flushes and closes the destination when New opened it.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.dst.(io.Closer); ok && !isStdio(t.dst) {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }

// MultiTracer is a stream and a ring recording the same run (ModeBoth).
type MultiTracer struct {
	sinks []Tracer
	level Level
}

func NewMultiTracer(level Level, sinks ...Tracer) *MultiTracer {
	return &MultiTracer{sinks: sinks, level: level}
}

// Emit hands every sink its own copy: the ring keeps events by value and a
// stream may still be formatting.
func (t *MultiTracer) Emit(ev *Event) {
	for _, s := range t.sinks {
		cp := *ev
		s.Emit(&cp)
	}
}

func (t *MultiTracer) Flush() error { return t.each(Tracer.Flush) }
func (t *MultiTracer) Close() error { return t.each(Tracer.Close) }

func (t *MultiTracer) each(op func(Tracer) error) error {
	var first error
	for _, s := range t.sinks {
		if err := op(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Ring returns the ring sink, nil when there is none.
func (t *MultiTracer) Ring() *RingTracer {
	for _, s := range t.sinks {
		if r, ok := s.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
