package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"memorymatch/core"
)

func newCacheCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local leaderboard cache",
	}
	var difficulty string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove locally saved scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			var d core.Difficulty
			if difficulty != "" {
				if d, err = core.ParseDifficulty(difficulty); err != nil {
					return err
				}
			}
			n, err := clearCache(e, d)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if d == "" {
				fmt.Fprintln(e.out, "Local leaderboard cleared.")
			} else {
				fmt.Fprintf(e.out, "Removed %d local %s score(s).\n", n, d)
			}
			return nil
		},
	}
	clearCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "only remove scores of this difficulty")

	cmd.AddCommand(clearCmd, &cobra.Command{
		Use:   "path",
		Short: "Print the cache file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, e.cache.Path())
			return nil
		},
	})
	return cmd
}

// clearCache drops every cached score, or only those of d when d is set.
// It returns how many scores were removed.
func clearCache(e *env, d core.Difficulty) (int, error) {
	all := e.cache.Load()
	if d == "" {
		return len(all), e.cache.Clear()
	}
	kept := make([]core.Score, 0, len(all))
	for _, s := range all {
		if s.Difficulty != d {
			kept = append(kept, s)
		}
	}
	return len(all) - len(kept), e.cache.Save(kept)
}
