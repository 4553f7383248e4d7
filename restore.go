package main

import (
	"context"

	"github.com/mongobak/mongobak/backup"
	"github.com/mongobak/mongobak/catalog"
	"github.com/mongobak/mongobak/shell"
	"github.com/rs/zerolog"
)

func restoreCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	a := args.Restore

	var cat *catalog.Catalog
	if a.Catalog != "" {
		var err error
		cat, err = newCatalog(a.Catalog, logger)
		if err != nil {
			return err
		}
	}

	opts := []backup.RestoreOption{
		backup.WithStagingDir(a.StagingDir),
		backup.WithDropDatabase(a.Drop),
		backup.WithSkipUsers(a.SkipUsers),
		backup.WithRestoreCleanup(a.Cleanup),
		backup.WithRestoreQuiet(a.Quiet),
	}
	if a.Host != "" {
		opts = append(opts, backup.WithRestoreHost(a.Host))
	}
	if a.Port > 0 {
		opts = append(opts, backup.WithRestorePort(a.Port))
	}
	if cat != nil {
		opts = append(opts, backup.WithRestoreCatalog(cat))
	}

	return backup.Restore(ctx, backup.RestoreParams{
		User:        a.User,
		Password:    a.Password,
		ArchivePath: a.Archive,
		Runner:      shell.New(logger, shell.WithQuiet(a.Quiet)),
		Logger:      logger,
	}, opts...)
}
