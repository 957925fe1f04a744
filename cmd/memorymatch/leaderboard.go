package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"memorymatch/core"
	"memorymatch/recorder"
)

func newLeaderboardCmd(flags *globalFlags) *cobra.Command {
	var difficulty string
	var local bool
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the best scores of the last 24 hours",
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

			title := "Top scores, all levels"
			if d != "" {
				title = fmt.Sprintf("Top scores, %s", d)
			}
			if local {
				renderLeaderboard(e.out, title+", this device", e.cache.Top(d, core.DefaultLimit), "", nil)
				return nil
			}
			entries, source := e.recorder.Leaderboard(cmd.Context(), d)
			if source == recorder.SourceRemote {
				title += ", last 24h"
			}
			renderLeaderboard(e.out, title, entries, source, nil)
			return nil
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "easy, medium or hard (default all)")
	cmd.Flags().BoolVar(&local, "local", false, "only show scores saved on this device")
	return cmd
}
