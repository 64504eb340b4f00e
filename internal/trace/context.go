package trace

import "context"

// carrier is what a context holds for tracing: the tracer, the span new
// spans nest under and the heartbeat that reports waits.
type carrier struct {
	tracer Tracer
	parent uint64
	beat   *Heartbeat
}

type carrierKey struct{}

func carrierFrom(ctx context.Context) carrier {
	if ctx == nil {
		return carrier{tracer: Nop}
	}
	if c, ok := ctx.Value(carrierKey{}).(carrier); ok {
		return c
	}
	return carrier{tracer: Nop}
}

func withCarrier(ctx context.Context, c carrier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, carrierKey{}, c)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return carrierFrom(ctx).tracer
}

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	c := carrierFrom(ctx)
	c.tracer = t
	return withCarrier(ctx, c)
}

// Parent returns the span that spans begun under ctx nest in, 0 at the root.
func Parent(ctx context.Context) uint64 {
	return carrierFrom(ctx).parent
}

// WithParent makes span the parent of spans begun under the returned context.
func WithParent(ctx context.Context, span *Span) context.Context {
	c := carrierFrom(ctx)
	c.parent = span.ID()
	return withCarrier(ctx, c)
}

// WithHeartbeat lets code running under ctx report waits to h.
func WithHeartbeat(ctx context.Context, h *Heartbeat) context.Context {
	c := carrierFrom(ctx)
	c.beat = h
	return withCarrier(ctx, c)
}
