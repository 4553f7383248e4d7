package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mongobak/mongobak/catalog"
	"github.com/mongobak/mongobak/mongotool"
	"github.com/mongobak/mongobak/shell"
	"github.com/mongobak/mongobak/tarbz"
	"github.com/rs/zerolog"
)

type RestoreParams struct {
	User        string
	Password    string
	ArchivePath string
	Runner      shell.Runner
	Logger      zerolog.Logger
}

// Restore extracts the archive into a staging directory and loads it into a
// running server. The staging directory is removed only after a successful
// restore; a failed restore leaves it behind for inspection.
func Restore(ctx context.Context, params RestoreParams, opts ...RestoreOption) (err error) {
	o := defaultRestoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	logger := params.Logger.With().Str("run_id", o.runID).Logger()

	startTime := time.Now()
	logger.Info().Str("archive", params.ArchivePath).Msg("starting restore")
	defer func() {
		tookSeconds := time.Since(startTime).Seconds()
		if ctx.Err() != nil {
			logger.Info().Str("archive", params.ArchivePath).Float64("seconds", tookSeconds).Msg("restore cancelled")
		} else {
			logger.Info().Str("archive", params.ArchivePath).Float64("seconds", tookSeconds).Msg("restore done")
		}
	}()

	if _, statErr := os.Stat(params.ArchivePath); statErr != nil {
		return fmt.Errorf("could not open archive: %w", statErr)
	}

	if o.catalog != nil {
		started := time.Now().UTC()
		defer func() {
			run := catalog.RestoreRun{
				ID:          o.runID,
				StartedAt:   started,
				FinishedAt:  time.Now().UTC(),
				Status:      catalog.StatusSuccess,
				ArchivePath: params.ArchivePath,
				StagingDir:  o.stagingDir,
			}
			if err != nil {
				run.Status = catalog.StatusFailed
				run.Error = err.Error()
			}
			if recErr := o.catalog.RecordRestore(context.WithoutCancel(ctx), run); recErr != nil {
				logger.Warn().Err(recErr).Msg("could not record restore run")
			}
		}()
	}

	if err = tarbz.Extract(ctx, params.ArchivePath, o.stagingDir, logger); err != nil {
		return err
	}

	if o.skipUsers {
		adminPath := filepath.Join(o.stagingDir, "admin")
		if _, statErr := os.Stat(adminPath); statErr == nil {
			if err = os.RemoveAll(adminPath); err != nil {
				return fmt.Errorf("could not remove system and user records: %w", err)
			}
			logger.Info().Str("path", adminPath).Msg("removed system and user records from staging")
		}
	}

	err = mongotool.Restore(ctx, params.Runner, mongotool.RestoreParams{
		User:         params.User,
		Password:     params.Password,
		InputDir:     o.stagingDir,
		Host:         o.host,
		Port:         o.port,
		DropDatabase: o.drop,
		Quiet:        o.quiet,
	}, logger)
	if err != nil {
		logger.Warn().Str("path", o.stagingDir).Msg("restore failed, staging directory kept for inspection")
		return err
	}

	if o.cleanup {
		if err = os.RemoveAll(o.stagingDir); err != nil {
			return fmt.Errorf("could not remove staging directory: %w", err)
		}
		logger.Debug().Str("path", o.stagingDir).Msg("removed staging directory")
	}

	return nil
}
