package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"annogen/internal/driver"
)

var batchCmd = &cobra.Command{
	Use:   "batch OUTPUT SOURCE...",
	Short: "Merge several sources into the output under a single lock",
	Long: `batch applies every SOURCE in command-line order, exactly as the same number
of single-source runs would, but takes the output lock and rebuilds the
previous state only once. Sources are read concurrently.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		uiFlag, err := cmd.Flags().GetString("ui")
		if err != nil {
			return fmt.Errorf("failed to get ui flag: %w", err)
		}
		mode, err := readUIMode(uiFlag)
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		req := s.request(args[0], args[1:])
		var res driver.Result
		if !s.quiet && shouldUseTUI(mode) {
			res, err = runWithUI(cmd.Context(), "annogen "+args[0], req)
		} else {
			res, err = driver.Run(cmd.Context(), req)
		}
		if err != nil {
			return s.report(cmd.ErrOrStderr(), err)
		}
		s.finish(cmd, res)
		return nil
	},
}

func init() {
	batchCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}
