package trace

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Heartbeat emits a liveness event at a fixed interval while a command runs.
// Each beat carries the run's uptime and, while the run is blocked (usually on
// the output lock held by another annogen), what it waits for and for how long.
type Heartbeat struct {
	tracer  Tracer
	started time.Time
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once

	mu        sync.Mutex
	waitFor   string
	waitSince time.Time
}

// StartHeartbeat starts beating on t. It returns nil when t is disabled or
// interval is not positive; a nil Heartbeat is safe to use.
func StartHeartbeat(t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:  t,
		started: time.Now(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go h.loop(interval)
	return h
}

func (h *Heartbeat) loop(interval time.Duration) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for n := 1; ; n++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(h.beat(n, now))
		case <-h.stop:
			return
		}
	}
}

func (h *Heartbeat) beat(n int, now time.Time) *Event {
	ev := &Event{
		Time:   now,
		Seq:    NextSeq(),
		Kind:   KindHeartbeat,
		Scope:  ScopeRun,
		Name:   "heartbeat",
		Detail: "#" + strconv.Itoa(n) + " up " + now.Sub(h.started).Round(time.Millisecond).String(),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.waitFor != "" {
		ev.Extra = map[string]string{
			"waiting": h.waitFor,
			"waited":  now.Sub(h.waitSince).Round(time.Millisecond).String(),
		}
	}
	return ev
}

// Wait marks the run as blocked on what until the returned function is
// called.
func (h *Heartbeat) Wait(what string) (done func()) {
	if h == nil {
		return func() {}
	}
	h.mu.Lock()
	h.waitFor, h.waitSince = what, time.Now()
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		h.waitFor = ""
		h.mu.Unlock()
	}
}

// Stop ends the heartbeat and waits for its goroutine. Further calls are
// no-ops.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Waiting is Wait on the heartbeat attached to ctx, if any.
func Waiting(ctx context.Context, what string) (done func()) {
	return carrierFrom(ctx).beat.Wait(what)
}
