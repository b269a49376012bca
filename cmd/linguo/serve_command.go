package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"linguo/internal/catalog"
	"linguo/internal/clips"
	"linguo/internal/deps"
	"linguo/internal/media/ffmpeg"
	"linguo/internal/media/locator"
	"linguo/internal/search"
	"linguo/internal/snaps"
	"linguo/internal/stats"
	"linguo/internal/webapi"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the archive HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lockPath := filepath.Join(cfg.Paths.LogDir, "linguo.lock")
			lock := flock.New(lockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another linguo instance is already running")
			}
			defer func() { _ = lock.Unlock() }()

			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				if !status.Available {
					logger.Warn("external dependency unavailable",
						slog.String("name", status.Name),
						slog.String("detail", status.Detail))
				}
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			engine := ffmpeg.NewCLI(
				ffmpeg.WithBinary(cfg.Engine.FFmpegBinary),
				ffmpeg.WithTimeout(time.Duration(cfg.Engine.TimeoutSeconds)*time.Second),
			)
			loc := locator.New(cfg.Paths.SourceDir)

			clipService := clips.NewService(store, engine, loc, cfg, logger)
			defer clipService.Close()

			server := webapi.New(
				cfg,
				store,
				search.New(store, cfg, logger),
				clipService,
				snaps.NewService(engine, loc, cfg, logger),
				stats.New(store, cfg),
				logger,
			)

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Info("starting archive server",
				slog.String("bind", cfg.Server.Bind),
				slog.String("catalog", store.Path()))
			return server.Run(runCtx)
		},
	}
}
