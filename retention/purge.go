// Package retention deletes backup files older than a cutoff, identified by
// the timestamp embedded in their names.
package retention

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/go-units"
	"github.com/mongobak/mongobak/timetag"
	"github.com/rs/zerolog"
)

type PurgeParams struct {
	Cutoff time.Time
	Dir    string
	Prefix string
	Layout string // Time tag layout, normally timetag.Layout.
}

// Purge scans the direct entries of Dir and deletes every file whose embedded
// time tag is strictly before Cutoff. Entries that do not match the naming
// convention are warned about and skipped; the scan continues. Deletion
// failures are fatal for the run. Deletes are irreversible.
func Purge(ctx context.Context, params PurgeParams, logger zerolog.Logger) error {
	entries, err := os.ReadDir(params.Dir)
	if err != nil {
		return fmt.Errorf("could not list directory: %w", err)
	}

	var filesDeleted int
	var totalFreed int64
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		tag, err := timetag.Parse(params.Layout, params.Prefix, entry.Name())
		if errors.Is(err, timetag.ErrMalformedName) {
			logger.Warn().Str("dir", params.Dir).Str("file", entry.Name()).
				Msg("file does not match naming convention")
			continue
		}
		if err != nil {
			return err
		}

		if !tag.Before(params.Cutoff) {
			continue
		}

		path := filepath.Join(params.Dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("could not stat old backup file %s: %w", path, err)
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("could not delete old backup file: %w", err)
		}

		logger.Info().Str("path", path).Int64("size", info.Size()).Msg("deleted old backup file")
		filesDeleted++
		totalFreed += info.Size()
	}

	if filesDeleted > 0 {
		logger.Info().
			Int("files_deleted", filesDeleted).
			Str("total_freed", units.HumanSize(float64(totalFreed))).
			Msg("deleted old backup files")
	}

	return nil
}
