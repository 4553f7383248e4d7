package main

import (
	"context"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
)

func historyCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	a := args.History

	cat, err := newCatalog(a.Catalog, logger)
	if err != nil {
		return err
	}

	if a.Restores {
		runs, err := cat.RecentRestores(ctx, a.Limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			logger.Info().Msg("no restore runs recorded")
			return nil
		}
		for _, run := range runs {
			event := logger.Info().
				Str("run_id", run.ID).
				Time("started", run.StartedAt).
				Str("status", run.Status).
				Str("archive", run.ArchivePath)
			if run.Error != "" {
				event = event.Str("error", run.Error)
			}
			event.Msg("restore run")
		}
		return nil
	}

	runs, err := cat.RecentBackups(ctx, a.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		logger.Info().Msg("no backup runs recorded")
		return nil
	}
	for _, run := range runs {
		event := logger.Info().
			Str("run_id", run.ID).
			Time("started", run.StartedAt).
			Str("status", run.Status).
			Str("artifact", run.ArtifactPath)
		if run.ArtifactSize > 0 {
			event = event.Str("size", units.HumanSize(float64(run.ArtifactSize)))
		}
		if run.Bucket != "" {
			event = event.Str("bucket", run.Bucket)
		}
		if run.Error != "" {
			event = event.Str("error", run.Error)
		}
		event.Msg("backup run")
	}

	return nil
}
