package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"annogen/internal/diag"
	"annogen/internal/interp"
	"annogen/internal/render"
	"annogen/internal/scanner"
	"annogen/internal/snapshot"
	"annogen/internal/source"
	"annogen/internal/store"
	"annogen/internal/trace"
)

// previous is what the last run left behind.
type previous struct {
	exists  bool
	content []byte
	mode    fs.FileMode
	// header is carried into the new output; "" when the file is not ours.
	header string
}

func readPrevious(path string) (previous, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return previous{mode: 0o644}, nil
	}
	if err != nil {
		return previous{}, diag.Wrap(diag.IOLoadFileError, source.Pos{File: path}, err)
	}
	// #nosec G304 -- path is the output named on the command line
	content, err := os.ReadFile(path)
	if err != nil {
		return previous{}, diag.Wrap(diag.IOLoadFileError, source.Pos{File: path}, err)
	}
	header, _ := render.ExtractHeader(content)
	return previous{exists: true, content: content, mode: info.Mode().Perm(), header: header}, nil
}

// restore rebuilds the state described by the previous output, from the
// snapshot cache when it holds an entry for these exact bytes.
func (req *Request) restore(ctx context.Context, prev previous) (*interp.Interp, bool, error) {
	if !prev.exists {
		return interp.New(store.NewState(), req.interpOptions()), false, nil
	}
	if req.FileSet != nil {
		req.FileSet.Add(req.Output, prev.content, source.FileGenerated)
	}
	if prev.header == "" {
		diag.ReportWarning(req.Reporter, diag.RenderInfo, source.Pos{File: req.Output, Line: 1},
			"existing output does not start with the annogen banner; a fresh header is written").
			WithNote(source.Pos{File: req.Output}, "annotation blocks found in it are still merged").
			Emit()
	}
	tracer := trace.FromContext(ctx)
	parent := trace.Parent(ctx)

	key := snapshot.Key(prev.content)
	st, hit, err := req.Cache.Get(key)
	switch {
	case err != nil:
		trace.Point(tracer, trace.ScopeFile, "snapshot_unreadable", err.Error(), parent)
		diag.ReportWarning(req.Reporter, diag.IOCacheError, source.Pos{File: req.Cache.Dir()},
			"cached snapshot is unreadable, rebuilding from "+req.Output+": "+err.Error()).Emit()
	case hit:
		trace.Point(tracer, trace.ScopeFile, "snapshot_hit", key.String(), parent)
		return interp.New(st, req.interpOptions()), true, nil
	}

	in := interp.New(store.NewState(), req.interpOptions())
	if err := Replay(ctx, in, req.Output, prev.content, req.Config.Limits.MaxLine); err != nil {
		return nil, false, err
	}
	return in, false, nil
}

// Replay feeds a previously generated file to in without inline detection.
func Replay(ctx context.Context, in *interp.Interp, name string, content []byte, maxLine int) error {
	_, err := scanner.Scan(ctx, in, name, content, scanner.Options{
		Mode:    scanner.ModeReplay,
		MaxLine: maxLine,
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", name, err)
	}
	return nil
}

// remember stores st under the digest of the bytes just written. A cache
// failure never fails the run.
func (req *Request) remember(ctx context.Context, out []byte, st *store.State) {
	if req.Cache == nil {
		return
	}
	if err := req.Cache.Put(snapshot.Key(out), st); err != nil {
		trace.Point(trace.FromContext(ctx), trace.ScopeFile, "snapshot_store_failed", err.Error(), trace.Parent(ctx))
		diag.ReportWarning(req.Reporter, diag.IOCacheError, source.Pos{File: req.Cache.Dir()},
			"cannot store snapshot: "+err.Error()).Emit()
	}
}
