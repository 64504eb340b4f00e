package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"annogen/internal/config"
	"annogen/internal/diag"
	"annogen/internal/diagfmt"
	"annogen/internal/driver"
	"annogen/internal/observ"
	"annogen/internal/snapshot"
	"annogen/internal/source"
	"annogen/internal/trace"
)

// session carries what every subcommand reads from the persistent flags.
type session struct {
	cfg      config.Config
	cache    *snapshot.Cache
	files    *source.FileSet
	timer    *observ.Timer
	color    bool
	quiet    bool
	timings  bool
	maxDiags int
	format   string
	warnings *diag.Bag
	tracer   trace.Tracer
	cleanups []func()
}

// openSession resolves flags and configuration and starts tracing and
// profiling. close must be called when the command finishes.
func openSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	s := &session{files: source.NewFileSet()}
	switch colorFlag {
	case "on":
		s.color = true
	case "off":
		s.color = false
	case "auto":
		s.color = isTerminal(os.Stderr)
	default:
		return nil, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
	color.NoColor = !s.color

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if s.maxDiags, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if s.format, err = flags.GetString("diagnostics-format"); err != nil {
		return nil, fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	s.format = strings.ToLower(strings.TrimSpace(s.format))
	if s.format != "pretty" && s.format != "json" {
		return nil, fmt.Errorf("invalid --diagnostics-format value %q (expected pretty|json)", s.format)
	}
	if s.timings {
		s.timer = observ.NewTimer()
	}
	s.warnings = diag.NewBag(s.maxDiags)

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if s.cfg, err = config.Resolve(configPath, wd); err != nil {
		return nil, err
	}

	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if s.cfg.Cache.Enabled && !noCache {
		// An unusable cache directory only costs speed.
		if cache, cerr := snapshot.Open(s.cfg.Cache.Dir); cerr == nil {
			s.cache = cache
		} else if !s.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "annogen: snapshot cache disabled: %v\n", cerr)
		}
	}

	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanups = append(s.cleanups, stopProf)
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		s.close()
		return nil, err
	}
	s.cleanups = append(s.cleanups, stopTrace)
	s.tracer = trace.FromContext(cmd.Context())
	return s, nil
}

func (s *session) close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

func (s *session) request(output string, sources []string) driver.Request {
	return driver.Request{
		Output:   output,
		Sources:  sources,
		Config:   s.cfg,
		Cache:    s.cache,
		Timer:    s.timer,
		FileSet:  s.files,
		Reporter: diag.BagReporter{Bag: s.warnings},
	}
}

// report prints err to w. Diagnostics go through diagfmt (or one line each
// with --quiet); other errors are returned for main to print.
func (s *session) report(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	s.dumpRing(w)
	d, ok := diag.AsDiagnostic(err)
	if !ok {
		return err
	}
	bag := diag.NewBag(s.maxDiags)
	for _, warn := range s.warnings.Items() {
		bag.Add(warn)
	}
	bag.Add(d)
	bag.Sort()
	if err := s.print(w, bag); err != nil {
		return err
	}
	return errReported
}

func (s *session) print(w io.Writer, bag *diag.Bag) error {
	switch {
	case bag.Len() == 0:
		return nil
	case s.format == "json":
		return diagfmt.JSON(w, bag.Items(), diagfmt.JSONOpts{Max: s.maxDiags, IncludeNotes: true})
	case s.quiet:
		fmt.Fprintln(w, diag.FormatShort(bag.Items()))
	default:
		diagfmt.Pretty(w, bag.Items(), s.files, diagfmt.PrettyOpts{
			Color:      s.color,
			ShowNotes:  true,
			ShowSource: true,
		})
	}
	return nil
}

// dumpRing writes the in-memory trace of a failed command, if one was kept.
func (s *session) dumpRing(w io.Writer) {
	ring := trace.RingOf(s.tracer)
	if ring == nil {
		return
	}
	fmt.Fprintln(w, "trace (most recent events):")
	if err := ring.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// finish prints the run summary and timings.
func (s *session) finish(cmd *cobra.Command, res driver.Result) {
	if s.warnings.HasWarnings() {
		s.warnings.Sort()
		if err := s.print(cmd.ErrOrStderr(), s.warnings); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "annogen: %v\n", err)
		}
	}
	if s.timings {
		fmt.Fprint(cmd.ErrOrStderr(), s.timer.Summary())
	}
	if s.quiet {
		return
	}
	state := "unchanged"
	if res.Written {
		state = "updated"
	}
	c := res.Counts
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d list(s), %d item(s), %d template(s), %d invocation(s)\n",
		res.Output, state, c.Lists, c.Items, c.Templates, c.Invocations)
}
