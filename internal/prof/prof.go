package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options selects the profiles to collect. Empty paths are skipped.
type Options struct {
	CPU     string
	Mem     string
	Runtime string
}

// Enabled reports whether any profile was requested.
func (o Options) Enabled() bool {
	return o.CPU != "" || o.Mem != "" || o.Runtime != ""
}

// Start begins CPU profiling and runtime tracing as requested. The returned
// stop function ends them, writes the heap profile and reports the first error.
func Start(opts Options) (func() error, error) {
	var cpuFile, traceFile *os.File

	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		cpuFile = f
	}

	if opts.Runtime != "" {
		f, err := os.Create(opts.Runtime)
		if err != nil {
			stopCPU(cpuFile)
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			stopCPU(cpuFile)
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		traceFile = f
	}

	stop := func() error {
		var errs []error
		if traceFile != nil {
			trace.Stop()
			errs = append(errs, traceFile.Close())
		}
		errs = append(errs, stopCPU(cpuFile))
		if opts.Mem != "" {
			errs = append(errs, writeMem(opts.Mem))
		}
		return errors.Join(errs...)
	}
	return stop, nil
}

func stopCPU(f *os.File) error {
	if f == nil {
		return nil
	}
	pprof.StopCPUProfile()
	return f.Close()
}

func writeMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
