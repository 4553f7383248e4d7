package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mongobak/mongobak/backup"
	"github.com/mongobak/mongobak/catalog"
	"github.com/mongobak/mongobak/config"
	"github.com/mongobak/mongobak/s3"
	"github.com/mongobak/mongobak/shell"
	"github.com/rs/zerolog"
)

// runCommand executes the config's backup jobs once, sequentially. A failed
// job does not stop the jobs after it.
func runCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	cfg, err := config.LoadFromFile(args.Run.Config)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	var cat *catalog.Catalog
	if args.Run.Catalog != "" {
		cat, err = newCatalog(args.Run.Catalog, logger)
		if err != nil {
			return fmt.Errorf("could not open catalog: %w", err)
		}
	}

	startTime := time.Now()
	logger.Info().Int("jobs", len(cfg.Jobs)).Msg("starting backup jobs")
	defer func() {
		tookSeconds := time.Since(startTime).Seconds()
		if ctx.Err() != nil {
			logger.Info().Float64("seconds", tookSeconds).Msg("backup jobs cancelled")
		} else {
			logger.Info().Float64("seconds", tookSeconds).Msg("backup jobs done")
		}
	}()

	var errs []error
	for _, job := range cfg.Jobs {
		if ctx.Err() != nil {
			break
		}

		if err := job.Validate(); err != nil {
			logger.Warn().AnErr("cause", err).Msg("skipping invalid job")
			continue
		}
		if !job.Enable {
			logger.Info().Str("job", job.Name).Msg("skipping disabled job")
			continue
		}

		jobLogger := logger.With().Str("job", job.Name).Logger()
		jobLogger.Info().Object("job", job).Msg("running backup job")

		if err := runBackupJob(ctx, job, cat, jobLogger); err != nil {
			jobLogger.Error().Err(err).Msg("backup job failed")
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
		}
	}

	return errors.Join(errs...)
}

func runBackupJob(ctx context.Context, job config.Job, cat *catalog.Catalog, logger zerolog.Logger) error {
	opts := []backup.Option{
		backup.WithDumpDir(job.DumpDir),
		backup.WithPrefix(job.Prefix),
		backup.WithCleanup(job.CleanupEnabled()),
		backup.WithQuiet(job.Quiet),
	}
	if job.Host != "" {
		opts = append(opts, backup.WithHost(job.Host))
	}
	if job.Port > 0 {
		opts = append(opts, backup.WithPort(job.Port))
	}
	if job.Database != "" {
		opts = append(opts, backup.WithDatabase(job.Database))
	}
	if job.AttachedDir != "" {
		opts = append(opts, backup.WithAttachedDir(job.AttachedDir))
	}
	if job.PurgeLocal > 0 {
		opts = append(opts, backup.WithPurgeLocal(job.PurgeLocal))
	}
	if job.PurgeAttached > 0 {
		opts = append(opts, backup.WithPurgeAttached(job.PurgeAttached))
	}
	if cat != nil {
		opts = append(opts, backup.WithCatalog(cat))
	}
	if job.S3Bucket != "" {
		uploader, err := s3.NewUploader(s3.Config{
			Endpoint:  job.S3Endpoint,
			Bucket:    job.S3Bucket,
			AccessKey: job.S3AccessKey,
			SecretKey: job.S3SecretKey,
		}, logger)
		if err != nil {
			return err
		}
		opts = append(opts, backup.WithUploader(uploader))
	}

	return backup.Run(ctx, backup.Params{
		User:     job.User,
		Password: job.Password,
		LocalDir: job.LocalDir,
		Runner:   shell.New(logger, shell.WithQuiet(job.Quiet)),
		Logger:   logger,
	}, opts...)
}
