package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"linguo/internal/catalog"
	"linguo/internal/ingest"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var (
		seasonFlag  int
		episodeFlag int
		titleFlag   string
	)

	cmd := &cobra.Command{
		Use:   "ingest <directory|file.srt>",
		Short: "Load SubRip transcripts into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			ingestor := ingest.New(store, logger)
			target := args[0]

			if strings.HasSuffix(strings.ToLower(target), ".srt") {
				if seasonFlag == 0 || episodeFlag == 0 {
					return fmt.Errorf("ingesting a single file requires --season and --episode")
				}
				_, count, err := ingestor.IngestFile(cmd.Context(), target, seasonFlag, episodeFlag, titleFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested s%02de%02d (%d subtitles)\n", seasonFlag, episodeFlag, count)
				return nil
			}

			report, err := ingestor.IngestDir(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d episodes (%d subtitles)\n", report.Episodes, report.Subtitles)
			for _, skipped := range report.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "Skipped %s: no SxxEyy slot in file name\n", skipped)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&seasonFlag, "season", 0, "Season number for single-file ingestion")
	cmd.Flags().IntVar(&episodeFlag, "episode", 0, "Episode number for single-file ingestion")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Episode title for single-file ingestion")

	return cmd
}
