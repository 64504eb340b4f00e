package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"annogen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "annogen OUTPUT SOURCE",
	Short: "Collect annotation blocks from C sources into one generated header",
	Long: `annogen reads the annotation blocks of SOURCE and merges them into OUTPUT.
OUTPUT is read back first, so running annogen once per source file, in any
number of build steps, accumulates every contribution into a single header.`,
	Args:          cobra.ExactArgs(2),
	SilenceErrors: true,
	RunE:          runOnce,
}

// errReported marks an error whose diagnostics were already printed.
var errReported = errors.New("reported")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("diagnostics-format", "pretty", "diagnostics format (pretty|json)")
	flags.String("config", "", "path to annogen.toml (default: search upwards from the working directory)")
	flags.Bool("no-cache", false, "do not read or write the snapshot cache")

	flags.String("trace", "", "write trace events to file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson); auto picks ndjson for .ndjson and .json files")
	flags.Int("trace-ring-size", 4096, "ring buffer capacity in events")
	flags.Duration("trace-heartbeat", 0*time.Second, "emit heartbeat events at this interval (0 disables)")

	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
}

// main executes the root command. Any failure exits with status 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "annogen: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
