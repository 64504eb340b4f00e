package trace

import (
	"fmt"
	"io"
	"sync"
)

// RingTracer keeps the newest events of a run in memory. Nothing is written
// until Dump, which the CLI calls only when a command fails.
type RingTracer struct {
	mu    sync.Mutex
	buf   []Event
	next  int
	total uint64
	level Level
}

// DefaultRingSize is used when a ring is created with a non-positive size.
const DefaultRingSize = 4096

// NewRingTracer creates a ring holding at most size events.
func NewRingTracer(size int, level Level) *RingTracer {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &RingTracer{buf: make([]Event, 0, size), level: level}
}

// Emit stores ev, overwriting the oldest event once the ring is full.
func (t *RingTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	if len(t.buf) < cap(t.buf) {
		t.buf = append(t.buf, *ev)
		return
	}
	t.buf[t.next] = *ev
	t.next = (t.next + 1) % len(t.buf)
}

// Snapshot returns the kept events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, 0, len(t.buf))
	out = append(out, t.buf[t.next:]...)
	return append(out, t.buf[:t.next]...)
}

// Dropped reports how many events were overwritten.
func (t *RingTracer) Dropped() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total - uint64(len(t.buf))
}

// Dump writes the kept events, oldest first. Blocks and files whose span was
// still open when recording stopped are listed last, with their positions;
// after a failed scan the innermost of them is where the scan stopped.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	if format != FormatNDJSON {
		if dropped := t.Dropped(); dropped > 0 {
			if _, err := fmt.Fprintf(w, "(%d older event(s) dropped)\n", dropped); err != nil {
				return err
			}
		}
	}
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	for _, open := range unfinished(events) {
		if _, err := w.Write(FormatEvent(&open, format)); err != nil {
			return err
		}
	}
	return nil
}

// unfinished returns one point event per file or block span that began in
// events but never ended, in the order they began.
func unfinished(events []Event) []Event {
	var order []uint64
	open := map[uint64]Event{}
	for _, ev := range events {
		if ev.Scope < ScopeFile {
			continue
		}
		switch ev.Kind {
		case KindSpanBegin:
			open[ev.SpanID] = ev
			order = append(order, ev.SpanID)
		case KindSpanEnd:
			delete(open, ev.SpanID)
		}
	}
	var out []Event
	for _, id := range order {
		ev, ok := open[id]
		if !ok {
			continue
		}
		out = append(out, Event{
			Time:     ev.Time,
			Kind:     KindPoint,
			Scope:    ev.Scope,
			ParentID: ev.SpanID,
			Name:     "unfinished " + ev.Scope.String(),
			Pos:      ev.Pos,
			Detail:   ev.Name,
		})
	}
	return out
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
