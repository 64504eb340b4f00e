// Package driver runs annogen passes: it locks the shared output, rebuilds
// the state the previous output describes, applies the new sources in order
// and replaces the output with the rendered result.
package driver

import (
	"context"
	"errors"
	"strconv"
	"time"

	"annogen/internal/command"
	"annogen/internal/config"
	"annogen/internal/diag"
	"annogen/internal/interp"
	"annogen/internal/lock"
	"annogen/internal/observ"
	"annogen/internal/pipeline"
	"annogen/internal/render"
	"annogen/internal/scanner"
	"annogen/internal/snapshot"
	"annogen/internal/source"
	"annogen/internal/store"
	"annogen/internal/trace"
)

// Request describes one run.
type Request struct {
	// Output is the shared generated file.
	Output string
	// Sources are applied in this order.
	Sources []string
	Config  config.Config

	// Cache, when set, short-circuits the replay of an unchanged output.
	Cache *snapshot.Cache
	// Sink receives progress events; File is the path as given in Sources.
	Sink  pipeline.ProgressSink
	Timer *observ.Timer
	// FileSet, when set, receives every loaded source and the previous
	// output so diagnostics can quote their lines.
	FileSet *source.FileSet
	// Reporter receives warnings that do not stop the run.
	Reporter diag.Reporter
	// Now stamps the header of a first-run output. Defaults to time.Now.
	Now        func() time.Time
	Dispatcher *command.Dispatcher
}

// Result summarises a finished run.
type Result struct {
	Output string
	// Written is false when the rendered bytes equal the previous output.
	Written  bool
	CacheHit bool
	Counts   store.Counts
	Scan     scanner.Stats
	Replays  int
}

// Run performs one pass. The output lock is held for the whole pass and
// released on every return path. On error the previous output is untouched.
func Run(ctx context.Context, req Request) (res Result, err error) {
	if req.Output == "" {
		return res, errors.New("driver: no output file")
	}
	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return res, err
	}
	res.Output = req.Output

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeRun, "run", trace.Parent(ctx))
	ctx = trace.WithParent(ctx, span)
	defer func() {
		span.WithExtra("sources", strconv.Itoa(len(req.Sources)))
		span.WithExtra("written", strconv.FormatBool(res.Written))
		span.End(req.Output)
	}()

	lk := lock.New(lockPath(req.Output, cfg.Lock.Path), cfg.Lock.Backoff())
	if err := req.stage(ctx, pipeline.StageLock, "", func() error {
		free, terr := lk.TryAcquire()
		if terr != nil || free {
			return terr
		}
		trace.Point(tracer, trace.ScopePhase, "lock_busy", lk.Path(), span.ID())
		done := trace.Waiting(ctx, "lock "+lk.Path())
		defer done()
		return lk.Acquire(ctx)
	}); err != nil {
		return res, err
	}
	defer func() {
		if !lk.Held() {
			return
		}
		if rerr := lk.Release(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	var prev previous
	var in *interp.Interp
	if err := req.stage(ctx, pipeline.StageSnapshot, "", func() error {
		var rerr error
		prev, rerr = readPrevious(req.Output)
		if rerr != nil {
			return rerr
		}
		in, res.CacheHit, rerr = req.restore(ctx, prev)
		return rerr
	}); err != nil {
		return res, err
	}

	files, err := req.load(ctx)
	if err != nil {
		return res, err
	}

	idx := req.Timer.Begin(string(pipeline.StageScan))
	for _, f := range files {
		pipeline.Emit(req.Sink, pipeline.Event{File: f.path, Stage: pipeline.StageScan, Status: pipeline.StatusWorking})
		started := time.Now()
		fspan := trace.BeginAt(tracer, trace.ScopeFile, "scan", f.name, trace.Parent(ctx))
		stats, serr := scanner.Scan(trace.WithParent(ctx, fspan), in, f.name, f.content, scanner.Options{
			Mode:    scanner.ModeFull,
			MaxLine: cfg.Limits.MaxLine,
		})
		fspan.WithExtra("blocks", strconv.Itoa(stats.Blocks))
		fspan.WithExtra("inline", strconv.Itoa(stats.Inline))
		res.Scan.Lines += stats.Lines
		res.Scan.Blocks += stats.Blocks
		res.Scan.Inline += stats.Inline
		if serr != nil {
			// fspan stays open: the failure dump lists it as unfinished.
			pipeline.Emit(req.Sink, pipeline.Event{File: f.path, Stage: pipeline.StageScan, Status: pipeline.StatusError, Err: serr, Elapsed: time.Since(started)})
			req.Timer.End(idx, "failed")
			return res, serr
		}
		fspan.End("")
		pipeline.Emit(req.Sink, pipeline.Event{File: f.path, Stage: pipeline.StageScan, Status: pipeline.StatusDone, Elapsed: time.Since(started)})
	}
	req.Timer.End(idx, strconv.Itoa(len(files))+" file(s)")

	if err := req.stage(ctx, pipeline.StageDrain, "", func() error {
		return in.Drain(ctx)
	}); err != nil {
		return res, err
	}
	res.Replays = in.Replays()
	res.Counts = in.State().Counts()

	var out []byte
	if err := req.stage(ctx, pipeline.StageRender, "", func() error {
		header := prev.header
		if header == "" {
			now := time.Now
			if req.Now != nil {
				now = req.Now
			}
			header = render.NewHeader(now(), cfg.Output.TimestampFormat)
		}
		var rerr error
		out, rerr = render.Render(in.State(), render.Options{Header: header})
		return rerr
	}); err != nil {
		return res, err
	}

	if prev.exists && string(prev.content) == string(out) {
		pipeline.Emit(req.Sink, pipeline.Event{Stage: pipeline.StageWrite, Status: pipeline.StatusSkipped})
		return res, nil
	}
	if err := req.stage(ctx, pipeline.StageWrite, "", func() error {
		return writeAtomic(req.Output, out, prev.mode)
	}); err != nil {
		return res, err
	}
	res.Written = true
	req.remember(ctx, out, in.State())
	return res, nil
}

// stage runs fn as one timed, traced and reported step.
func (req *Request) stage(ctx context.Context, st pipeline.Stage, file string, fn func() error) error {
	idx := req.Timer.Begin(string(st))
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, string(st), trace.Parent(ctx))
	pipeline.Emit(req.Sink, pipeline.Event{File: file, Stage: st, Status: pipeline.StatusWorking})

	err := fn()

	elapsed := req.Timer.End(idx, "")
	span.End(errDetail(err))
	evt := pipeline.Event{File: file, Stage: st, Status: pipeline.StatusDone, Elapsed: elapsed}
	if err != nil {
		evt.Status = pipeline.StatusError
		evt.Err = err
	}
	pipeline.Emit(req.Sink, evt)
	return err
}

func (req *Request) interpOptions() interp.Options {
	return interp.Options{
		MaxName:    req.Config.Limits.MaxName,
		MaxReplays: req.Config.Limits.MaxReplays,
		Dispatcher: req.Dispatcher,
	}
}

func lockPath(output, configured string) string {
	if configured != "" {
		return configured
	}
	return lock.PathFor(output)
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return "error: " + err.Error()
}
