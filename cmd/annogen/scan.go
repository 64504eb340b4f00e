package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"annogen/internal/cstr"
	"annogen/internal/driver"
	"annogen/internal/interp"
	"annogen/internal/scanner"
	"annogen/internal/store"
)

var scanCmd = &cobra.Command{
	Use:   "scan SOURCE...",
	Short: "Show the annotation lines and inline calls found in sources",
	Long: `scan runs the scanner over each SOURCE without touching any output and prints
every block, command line, block line and inline invocation it sees. Text is
escaped like a C string literal so stray control bytes are visible.

Templates declared by an earlier SOURCE are known to later ones, so inline
calls are reported when the declaring file comes first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		out := cmd.OutOrStdout()
		in := interp.New(store.NewState(), interp.Options{
			MaxName:    s.cfg.Limits.MaxName,
			MaxReplays: s.cfg.Limits.MaxReplays,
		})
		for _, p := range args {
			name := driver.DisplayName(p)
			id, err := s.files.LoadAs(p, name, 0)
			if err != nil {
				return err
			}
			content := s.files.Get(id).Content
			stats, err := scanner.Scan(cmd.Context(), in, name, content, scanner.Options{
				Mode:    scanner.ModeFull,
				MaxLine: s.cfg.Limits.MaxLine,
				Observe: func(ev scanner.Event) {
					fmt.Fprintln(out, formatEvent(ev))
				},
			})
			if err != nil {
				return s.report(cmd.ErrOrStderr(), err)
			}
			if !s.quiet {
				fmt.Fprintf(out, "%s: %d line(s), %d block(s), %d inline call(s)\n",
					name, stats.Lines, stats.Blocks, stats.Inline)
			}
		}
		return nil
	},
}

func formatEvent(ev scanner.Event) string {
	switch ev.Kind {
	case scanner.EventBlock:
		return fmt.Sprintf("%s\tblock", ev.Pos)
	case scanner.EventCommand:
		return fmt.Sprintf("%s\tcommand\t%s", ev.Pos, ev.Command)
	case scanner.EventInline:
		args := make([]string, len(ev.Args))
		for i, a := range ev.Args {
			args[i] = cstr.Quote(a)
		}
		return fmt.Sprintf("%s\tinline\t%s(%s)", ev.Pos, ev.Text, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("%s\t%s\t%s", ev.Pos, ev.Kind, cstr.Quote(ev.Text))
	}
}
