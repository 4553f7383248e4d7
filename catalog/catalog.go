// Package catalog keeps a SQLite record of backup and restore runs. It is
// bookkeeping only: it never verifies artifacts.
package catalog

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Catalog struct {
	Lock   sync.Mutex
	Cli    *gorm.DB
	Logger zerolog.Logger
}

func (c *Catalog) RecordBackup(ctx context.Context, run BackupRun) error {
	c.Lock.Lock()
	defer c.Lock.Unlock()

	c.Logger.Debug().Str("run_id", run.ID).Str("status", run.Status).Msg("recording backup run")

	return c.Cli.WithContext(ctx).Create(&run).Error
}

func (c *Catalog) RecordRestore(ctx context.Context, run RestoreRun) error {
	c.Lock.Lock()
	defer c.Lock.Unlock()

	c.Logger.Debug().Str("run_id", run.ID).Str("status", run.Status).Msg("recording restore run")

	return c.Cli.WithContext(ctx).Create(&run).Error
}

// RecentBackups returns up to limit backup runs, most recent first.
func (c *Catalog) RecentBackups(ctx context.Context, limit int) ([]BackupRun, error) {
	c.Lock.Lock()
	defer c.Lock.Unlock()

	runs := []BackupRun{}
	err := c.Cli.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// RecentRestores returns up to limit restore runs, most recent first.
func (c *Catalog) RecentRestores(ctx context.Context, limit int) ([]RestoreRun, error) {
	c.Lock.Lock()
	defer c.Lock.Unlock()

	runs := []RestoreRun{}
	err := c.Cli.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}

	return runs, nil
}
