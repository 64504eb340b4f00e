package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"annogen/internal/snapshot"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached snapshot",
	Long:  "Remove the snapshot cache. The next run of each output rebuilds its state from the output file.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	cache := s.cache
	if cache == nil {
		// Cleaning works even with caching switched off.
		if cache, err = snapshot.Open(s.cfg.Cache.Dir); err != nil {
			return fmt.Errorf("failed to open snapshot cache: %w", err)
		}
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to remove %q: %w", cache.Dir(), err)
	}
	if !s.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
	}
	return nil
}
