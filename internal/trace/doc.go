// Package trace records structured span and point events for annogen runs.
//
// Tracing is off unless --trace or --trace-level is given:
//
//	annogen --trace=- --trace-level=detail gen/annotations.h src/mod.c
//
// # Tracers
//
//   - Nop: zero-overhead tracer used when tracing is disabled
//   - StreamTracer: writes events as text or NDJSON, buffered unless the
//     destination is stderr or stdout
//   - RingTracer: keeps the last N events for a dump after a failure
//   - MultiTracer: a stream and a ring together (--trace-mode=both)
//
// # Scopes
//
//   - ScopeRun: one whole invocation (lock, load, scan, render, write)
//   - ScopePhase: one step of a run
//   - ScopeFile: one source or output file
//   - ScopeBlock: one annotation block (debug and error levels)
//
// File and block spans carry a source position. When a command fails, the
// ring is dumped and every file or block span still open is listed with its
// position, which names the block a scan stopped in.
//
// The tracer, the current parent span and the heartbeat travel through
// context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "scan", trace.Parent(ctx))
//	ctx = trace.WithParent(ctx, span)
//	defer span.End("")
//
// A heartbeat (--trace-heartbeat) reports uptime and, through Waiting, how
// long the run has been blocked on the output lock.
package trace
