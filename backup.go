package main

import (
	"context"

	"github.com/mongobak/mongobak/backup"
	"github.com/mongobak/mongobak/catalog"
	"github.com/mongobak/mongobak/s3"
	"github.com/mongobak/mongobak/shell"
	"github.com/rs/zerolog"
)

func backupCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	a := args.Backup

	var cat *catalog.Catalog
	if a.Catalog != "" {
		var err error
		cat, err = newCatalog(a.Catalog, logger)
		if err != nil {
			return err
		}
	}

	opts := []backup.Option{
		backup.WithDumpDir(a.DumpDir),
		backup.WithPrefix(a.Prefix),
		backup.WithCleanup(a.Cleanup),
		backup.WithQuiet(a.Quiet),
	}
	if a.Host != "" {
		opts = append(opts, backup.WithHost(a.Host))
	}
	if a.Port > 0 {
		opts = append(opts, backup.WithPort(a.Port))
	}
	if a.DB != "" {
		opts = append(opts, backup.WithDatabase(a.DB))
	}
	if a.AttachedDir != "" {
		opts = append(opts, backup.WithAttachedDir(a.AttachedDir))
	}
	if a.PurgeLocal > 0 {
		opts = append(opts, backup.WithPurgeLocal(a.PurgeLocal))
	}
	if a.PurgeAttached > 0 {
		opts = append(opts, backup.WithPurgeAttached(a.PurgeAttached))
	}
	if cat != nil {
		opts = append(opts, backup.WithCatalog(cat))
	}
	if a.S3Bucket != "" {
		uploader, err := s3.NewUploader(s3.Config{
			Endpoint:  a.S3Endpoint,
			Bucket:    a.S3Bucket,
			AccessKey: a.S3AccessKey,
			SecretKey: a.S3SecretKey,
		}, logger)
		if err != nil {
			return err
		}
		opts = append(opts, backup.WithUploader(uploader))
	}

	return backup.Run(ctx, backup.Params{
		User:     a.User,
		Password: a.Password,
		LocalDir: a.LocalDir,
		Runner:   shell.New(logger, shell.WithQuiet(a.Quiet)),
		Logger:   logger,
	}, opts...)
}
