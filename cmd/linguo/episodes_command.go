package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"linguo/internal/catalog"
)

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "episodes",
		Short: "List catalogued episodes",
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

			episodes, err := store.Episodes(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(episodes) == 0 {
				fmt.Fprintln(out, "No episodes in catalog; run `linguo ingest` first.")
				return nil
			}

			headers := []string{"ID", "Season", "Episode", "Title", "Correction"}
			rows := make([][]string, 0, len(episodes))
			for _, episode := range episodes {
				rows = append(rows, []string{
					strconv.FormatInt(episode.ID, 10),
					episode.SeasonTitle,
					fmt.Sprintf("s%02de%02d", episode.SeasonID, episode.IDInSeason),
					episode.Title,
					formatCorrection(episode.CorrectionMS),
				})
			}

			if !isTerminal(out) {
				for _, row := range rows {
					fmt.Fprintln(out, strings.Join(row, "\t"))
				}
				return nil
			}
			fmt.Fprintln(out, renderTable(headers, rows, 0, 4))
			return nil
		},
	}
}

func formatCorrection(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.3fs", float64(ms)/1000)
}
