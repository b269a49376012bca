package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"linguo/internal/catalog"
)

func newCorrectionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "correction <episode-id> <milliseconds>",
		Short: "Set an episode's subtitle correction and purge its cached artifacts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			episodeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("episode id %q: %w", args[0], err)
			}
			correctionMS, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("correction %q: %w", args[1], err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if max := int64(cfg.Clips.MaxCorrectionMS); correctionMS > max || correctionMS < -max {
				return fmt.Errorf("correction %d outside [-%d, %d]", correctionMS, max, max)
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

			runCtx := cmd.Context()
			updated, err := store.SetCorrection(runCtx, episodeID, correctionMS)
			if err != nil {
				return err
			}
			if !updated {
				return fmt.Errorf("episode %d not found", episodeID)
			}

			// Every cached render of the episode is stale under the new
			// correction. Remove files first, then the records.
			generations, err := store.GenerationsForEpisode(runCtx, episodeID)
			if err != nil {
				return err
			}
			for _, generation := range generations {
				targets := []string{filepath.Join(cfg.Paths.DataDir, generation.Filetype, generation.Artifact)}
				if generation.Snapshot != "" {
					targets = append(targets, filepath.Join(cfg.Paths.DataDir, generation.Snapshot))
				}
				for _, target := range targets {
					if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
						logger.Warn("could not remove stale artifact", slog.String("path", target))
					}
				}
			}
			purged, err := store.DeleteGenerationsForEpisode(runCtx, episodeID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Episode %d correction set to %dms (%d cached artifacts purged)\n",
				episodeID, correctionMS, purged)
			return nil
		},
	}
}
