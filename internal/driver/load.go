package driver

import (
	"context"
	"path"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"annogen/internal/diag"
	"annogen/internal/pipeline"
	"annogen/internal/source"
	"annogen/internal/trace"
)

// loadedFile is one source read from disk.
type loadedFile struct {
	// path as given by the caller; used for progress events.
	path string
	// name recorded in positions and expanded by the file marker.
	name    string
	content []byte
	flags   source.FileFlags
}

// DisplayName is the name a source is recorded under: its base name with
// the path spelling normalised.
func DisplayName(p string) string {
	return path.Base(source.NormalizePath(p))
}

// load reads every source concurrently. Results keep the order of
// req.Sources, which is the order contributions are applied in.
func (req *Request) load(ctx context.Context) ([]loadedFile, error) {
	idx := req.Timer.Begin(string(pipeline.StageLoad))
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, string(pipeline.StageLoad), trace.Parent(ctx))
	defer func() { span.End("") }()

	files := make([]loadedFile, len(req.Sources))
	if len(files) == 0 {
		req.Timer.End(idx, "no sources")
		return files, nil
	}

	jobs := req.Config.Limits.MaxJobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, p := range req.Sources {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			pipeline.Emit(req.Sink, pipeline.Event{File: p, Stage: pipeline.StageLoad, Status: pipeline.StatusWorking})
			started := time.Now()
			content, flags, err := source.ReadNormalized(p)
			if err != nil {
				err = diag.Wrap(diag.IOLoadFileError, source.Pos{File: p}, err)
				pipeline.Emit(req.Sink, pipeline.Event{File: p, Stage: pipeline.StageLoad, Status: pipeline.StatusError, Err: err, Elapsed: time.Since(started)})
				return err
			}
			files[i] = loadedFile{path: p, name: DisplayName(p), content: content, flags: flags}
			pipeline.Emit(req.Sink, pipeline.Event{File: p, Stage: pipeline.StageLoad, Status: pipeline.StatusDone, Elapsed: time.Since(started)})
			return nil
		})
	}
	err := g.Wait()
	req.Timer.End(idx, "")
	if err != nil {
		return nil, err
	}

	if req.FileSet != nil {
		for _, f := range files {
			req.FileSet.Add(f.name, f.content, f.flags)
		}
	}
	span.WithExtra("files", itoa(len(files)))
	return files, nil
}
