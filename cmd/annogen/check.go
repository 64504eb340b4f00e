package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"annogen/internal/command"
)

var checkCmd = &cobra.Command{
	Use:   "check [NAME...]",
	Short: "Verify that command names hash to distinct dispatch values",
	Long: `check recomputes the dispatch hash of every built-in command and fails if two
share a value. Extra NAMEs are checked against the built-ins as well, which
tells whether a new command name could be added without a collision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		names := append(append([]string(nil), command.Builtin...), args...)
		out := cmd.OutOrStdout()
		if !s.quiet {
			for _, n := range names {
				fmt.Fprintf(out, "%-24s %6d\n", n, command.NameHash(n))
			}
		}
		if err := command.CheckCollisions(names); err != nil {
			return s.report(cmd.ErrOrStderr(), err)
		}
		if !s.quiet {
			fmt.Fprintf(out, "ok: %d name(s), no hash collisions\n", len(names))
		}
		return nil
	},
}
