package main

import (
	"github.com/spf13/cobra"

	"annogen/internal/driver"
)

// runOnce is the root command: merge one source into the output.
func runOnce(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := driver.Run(cmd.Context(), s.request(args[0], args[1:]))
	if err != nil {
		return s.report(cmd.ErrOrStderr(), err)
	}
	s.finish(cmd, res)
	return nil
}
