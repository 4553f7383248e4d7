package main

import (
	"context"
	"time"

	"github.com/mongobak/mongobak/retention"
	"github.com/mongobak/mongobak/timetag"
	"github.com/rs/zerolog"
)

func purgeCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	a := args.Purge

	cutoff := time.Now().UTC().Truncate(time.Minute).AddDate(0, 0, -a.Days)

	startTime := time.Now()
	logger.Info().Str("dir", a.Dir).Time("cutoff", cutoff).Msg("starting purge")
	defer func() {
		tookSeconds := time.Since(startTime).Seconds()
		if ctx.Err() != nil {
			logger.Info().Str("dir", a.Dir).Float64("seconds", tookSeconds).Msg("purge cancelled")
		} else {
			logger.Info().Str("dir", a.Dir).Float64("seconds", tookSeconds).Msg("purge done")
		}
	}()

	return retention.Purge(ctx, retention.PurgeParams{
		Cutoff: cutoff,
		Dir:    a.Dir,
		Prefix: a.Prefix,
		Layout: timetag.Layout,
	}, logger)
}
