package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"linguo/internal/catalog"
	"linguo/internal/config"
	"linguo/internal/stats"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog and artifact totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			snapshot, err := stats.New(store, cfg).Collect(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Seasons", strconv.FormatInt(snapshot.Seasons, 10)},
				{"Episodes", strconv.FormatInt(snapshot.Episodes, 10)},
				{"Subtitles", strconv.FormatInt(snapshot.Subtitles, 10)},
				{"Clips", strconv.FormatInt(snapshot.Clips, 10)},
				{"Generations", strconv.FormatInt(snapshot.Generations, 10)},
			}
			for _, filetype := range config.ArtifactFiletypes() {
				rows = append(rows, []string{
					fmt.Sprintf("Artifacts (%s)", filetype),
					strconv.Itoa(snapshot.Artifacts[filetype]),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Count"}, rows, 1))
			return nil
		},
	}
}
