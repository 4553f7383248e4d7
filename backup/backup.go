// Package backup sequences one backup run: dump, archive, replicate, upload,
// purge, cleanup. Stages run in order, each waits for the previous one, and
// any failure ends the run; completed stages are never rolled back. The
// inverse restore pipeline lives here too.
//
// A run assumes exclusive use of its working directories. Concurrent runs
// against the same directories are undefined; the caller's scheduling
// discipline must prevent them.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mongobak/mongobak/catalog"
	"github.com/mongobak/mongobak/fileutils"
	"github.com/mongobak/mongobak/mongotool"
	"github.com/mongobak/mongobak/retention"
	"github.com/mongobak/mongobak/shell"
	"github.com/mongobak/mongobak/tarbz"
	"github.com/mongobak/mongobak/timetag"
	"github.com/rs/zerolog"
)

// Uploader pushes a local backup file to an object store bucket.
type Uploader interface {
	Bucket() string
	Upload(ctx context.Context, path string) error
}

type Params struct {
	User     string
	Password string
	// LocalDir is the primary backup directory the archive is written into.
	LocalDir string
	Runner   shell.Runner
	Logger   zerolog.Logger
}

// Run executes one backup. The attached and local directories are validated
// before the dump command is built, so a bad path never costs a dump.
func Run(ctx context.Context, params Params, opts ...Option) (err error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	logger := params.Logger.With().Str("run_id", o.runID).Logger()

	startTime := time.Now()
	logger.Info().Str("dest", params.LocalDir).Msg("starting backup")
	defer func() {
		tookSeconds := time.Since(startTime).Seconds()
		if ctx.Err() != nil {
			logger.Info().Str("dest", params.LocalDir).Float64("seconds", tookSeconds).Msg("backup cancelled")
		} else {
			logger.Info().Str("dest", params.LocalDir).Float64("seconds", tookSeconds).Msg("backup done")
		}
	}()

	if o.attachedDir != "" {
		if err := verifyDir(o.attachedDir); err != nil {
			return fmt.Errorf("attached directory must already exist: %w", err)
		}
	}
	if err := verifyDir(params.LocalDir); err != nil {
		return fmt.Errorf("backup directory must already exist: %w", err)
	}
	if err := fileutils.VerifyWritable(params.LocalDir); err != nil {
		return fmt.Errorf("backup directory must be writable: %w", err)
	}

	var artifactPath string
	var artifactSize int64
	var artifactHash string
	if o.catalog != nil {
		started := time.Now().UTC()
		defer func() {
			run := catalog.BackupRun{
				ID:           o.runID,
				StartedAt:    started,
				FinishedAt:   time.Now().UTC(),
				Status:       catalog.StatusSuccess,
				Prefix:       o.prefix,
				LocalDir:     params.LocalDir,
				AttachedDir:  o.attachedDir,
				ArtifactPath: artifactPath,
				ArtifactSize: artifactSize,
				ArtifactHash: artifactHash,
			}
			if o.uploader != nil {
				run.Bucket = o.uploader.Bucket()
			}
			if err != nil {
				run.Status = catalog.StatusFailed
				run.Error = err.Error()
			}
			if recErr := o.catalog.RecordBackup(context.WithoutCancel(ctx), run); recErr != nil {
				logger.Warn().Err(recErr).Msg("could not record backup run")
			}
		}()
	}

	err = mongotool.Dump(ctx, params.Runner, mongotool.DumpParams{
		User:      params.User,
		Password:  params.Password,
		OutputDir: o.dumpDir,
		Host:      o.host,
		Port:      o.port,
		Database:  o.database,
		Quiet:     o.quiet,
	}, logger)
	if err != nil {
		return err
	}

	artifactBase := filepath.Join(params.LocalDir, o.prefix+timetag.Format(timetag.Layout, o.now()))
	artifactPath, err = tarbz.Compress(ctx, o.dumpDir, artifactBase, logger)
	if err != nil {
		return err
	}

	if o.catalog != nil {
		if info, statErr := os.Stat(artifactPath); statErr == nil {
			artifactSize = info.Size()
		}
		if hash, hashErr := fileutils.ComputeFileHash(artifactPath); hashErr == nil {
			artifactHash = fmt.Sprintf("%016x", hash)
		}
	}

	if o.attachedDir != "" {
		dest := filepath.Join(o.attachedDir, filepath.Base(artifactPath))
		if err = fileutils.CopyFile(artifactPath, dest); err != nil {
			return fmt.Errorf("could not replicate backup file: %w", err)
		}
		logger.Info().Str("path", dest).Msg("replicated backup file")
	}

	if o.uploader != nil {
		if err = o.uploader.Upload(ctx, artifactPath); err != nil {
			return err
		}
	}

	if o.purgeLocal > 0 {
		err = retention.Purge(ctx, retention.PurgeParams{
			Cutoff: purgeCutoff(o.now(), o.purgeLocal),
			Dir:    params.LocalDir,
			Prefix: o.prefix,
			Layout: timetag.Layout,
		}, logger)
		if err != nil {
			return fmt.Errorf("could not purge local backup files: %w", err)
		}
	}

	if o.purgeAttached > 0 && o.attachedDir != "" {
		err = retention.Purge(ctx, retention.PurgeParams{
			Cutoff: purgeCutoff(o.now(), o.purgeAttached),
			Dir:    o.attachedDir,
			Prefix: o.prefix,
			Layout: timetag.Layout,
		}, logger)
		if err != nil {
			return fmt.Errorf("could not purge attached backup files: %w", err)
		}
	}

	if o.cleanup {
		if err = os.RemoveAll(o.dumpDir); err != nil {
			return fmt.Errorf("could not remove dump directory: %w", err)
		}
		logger.Debug().Str("path", o.dumpDir).Msg("removed dump directory")
	}

	return nil
}

func verifyDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Cutoffs are minute-aligned to match the resolution of the embedded time
// tag.
func purgeCutoff(now time.Time, days int) time.Time {
	return now.UTC().Truncate(time.Minute).AddDate(0, 0, -days)
}
