package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// ErrCommandFailed marks an external command that could not run or exited
// non-zero. No retries are attempted.
var ErrCommandFailed = errors.New("external command failed")

// Runner executes an external command and waits for it to exit. The
// orchestrators depend on this interface so tests can record invocations
// without spawning processes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

type runner struct {
	logger zerolog.Logger
	quiet  bool
}

type Option func(r *runner)

// WithQuiet discards the command's stdout and stderr instead of passing them
// through to the parent process.
func WithQuiet(quiet bool) Option {
	return func(r *runner) {
		r.quiet = quiet
	}
}

func New(logger zerolog.Logger, opts ...Option) Runner {
	r := &runner{logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args. Only the command name is logged: credentials
// travel in the argument list.
func (r *runner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	r.logger.Debug().Str("command", name).Msg("running external command")
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with code %d", ErrCommandFailed, name, exitErr.ExitCode())
		}
		return fmt.Errorf("%w: %s: %s", ErrCommandFailed, name, err)
	}

	return nil
}
