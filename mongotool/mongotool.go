// Package mongotool builds and runs the external mongodump and mongorestore
// commands. Credentials are passed on the command line because that is the
// tools' invocation contract; they are visible in process listings for the
// lifetime of the command.
package mongotool

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mongobak/mongobak/shell"
	"github.com/rs/zerolog"
)

type DumpParams struct {
	User      string
	Password  string
	OutputDir string
	Host      string // External tool default when empty.
	Port      int    // External tool default when zero.
	Database  string // All databases when empty.
	Quiet     bool
}

// Dump runs mongodump into OutputDir.
//
// WARNING: if OutputDir already exists it is deleted recursively first, prior
// contents included.
func Dump(ctx context.Context, runner shell.Runner, params DumpParams, logger zerolog.Logger) error {
	if _, err := os.Stat(params.OutputDir); err == nil {
		logger.Warn().Str("path", params.OutputDir).Msg("deleting existing dump directory")
		if err := os.RemoveAll(params.OutputDir); err != nil {
			return fmt.Errorf("could not clear dump directory %s: %w", params.OutputDir, err)
		}
	}

	args := []string{}
	if params.Quiet {
		args = append(args, "--quiet")
	}
	args = append(args, "-u", params.User, "-p", params.Password, "-o", params.OutputDir)
	if params.Host != "" {
		args = append(args, "--host", params.Host)
	}
	if params.Port > 0 {
		args = append(args, "--port", strconv.Itoa(params.Port))
	}
	if params.Database != "" {
		args = append(args, "--db", params.Database)
	}

	logger.Info().Str("path", params.OutputDir).Msg("dumping database")

	return runner.Run(ctx, "mongodump", args...)
}

type RestoreParams struct {
	User     string
	Password string
	InputDir string
	Host     string // External tool default when empty.
	Port     int    // External tool default when zero.
	// DropDatabase drops the ENTIRE running database before loading.
	// Irreversible; explicit opt-in only.
	DropDatabase bool
	Quiet        bool
}

// Restore runs mongorestore against a running mongod using the dump tree at
// InputDir. The directory must exist. The provided user needs restore
// permissions on the target database.
func Restore(ctx context.Context, runner shell.Runner, params RestoreParams, logger zerolog.Logger) error {
	if _, err := os.Stat(params.InputDir); err != nil {
		return fmt.Errorf("could not open restore input directory: %w", err)
	}

	args := []string{}
	if params.Quiet {
		args = append(args, "--quiet")
	} else {
		args = append(args, "-v")
	}
	args = append(args, "-u", params.User, "-p", params.Password)
	if params.Host != "" {
		args = append(args, "--host", params.Host)
	}
	if params.Port > 0 {
		args = append(args, "--port", strconv.Itoa(params.Port))
	}
	if params.DropDatabase {
		args = append(args, "--drop")
	}
	args = append(args, params.InputDir)

	logger.Info().Str("path", params.InputDir).Bool("drop", params.DropDatabase).Msg("restoring database")

	return runner.Run(ctx, "mongorestore", args...)
}
