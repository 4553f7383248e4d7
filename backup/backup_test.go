package backup_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/mongobak/mongobak/backup"
	"github.com/mongobak/mongobak/catalog"
	"github.com/mongobak/mongobak/timetag"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordedCall struct {
	name string
	args []string
}

// scriptedRunner records invocations and can stand in for the external
// tools' side effects.
type scriptedRunner struct {
	calls []recordedCall
	onRun func(name string, args []string) error
}

func (r *scriptedRunner) Run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, recordedCall{name: name, args: args})
	if r.onRun != nil {
		return r.onRun(name, args)
	}
	return nil
}

// dumpSimulator populates the mongodump output directory the way the real
// tool would.
func dumpSimulator(t *testing.T) func(name string, args []string) error {
	t.Helper()
	return func(name string, args []string) error {
		if name != "mongodump" {
			return nil
		}
		outDir := ""
		for i, arg := range args {
			if arg == "-o" && i+1 < len(args) {
				outDir = args[i+1]
			}
		}
		require.NotEmpty(t, outDir)
		require.NoError(t, os.MkdirAll(filepath.Join(outDir, "appdb"), 0700))
		return os.WriteFile(filepath.Join(outDir, "appdb", "records.bson"), []byte("records"), 0644)
	}
}

type mockUploader struct {
	mock.Mock
}

func (u *mockUploader) Bucket() string {
	return u.Called().String(0)
}

func (u *mockUploader) Upload(ctx context.Context, path string) error {
	return u.Called(ctx, path).Error(0)
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cli, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, cli.AutoMigrate(&catalog.BackupRun{}, &catalog.RestoreRun{}))
	return &catalog.Catalog{Cli: cli, Logger: zerolog.New(zerolog.NewTestWriter(t))}
}

func TestRunFailsFastOnMissingAttachedDir(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	require.NoError(t, os.MkdirAll(localDir, 0700))
	runner := &scriptedRunner{}

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	}, backup.WithAttachedDir(filepath.Join(tmpDir, "nope")))

	assert.Error(t, err)
	assert.Empty(t, runner.calls, "dump must not run when the attached directory is missing")
}

func TestRunFailsFastOnMissingLocalDir(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	runner := &scriptedRunner{}

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2",
		LocalDir: filepath.Join(t.TempDir(), "nope"),
		Runner:   runner, Logger: logger,
	})

	assert.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestRunFullPipeline(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	attachedDir := filepath.Join(tmpDir, "attached")
	dumpDir := filepath.Join(tmpDir, "scratch")
	require.NoError(t, os.MkdirAll(localDir, 0700))
	require.NoError(t, os.MkdirAll(attachedDir, 0700))

	// Aged and malformed files the purge stage must handle.
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "backup_2020-01-01_00-00.tbz"), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "backup_notes.txt"), []byte("keep"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(attachedDir, "backup_2020-06-01_00-00.tbz"), []byte("old"), 0644))

	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	runner := &scriptedRunner{onRun: dumpSimulator(t)}
	uploader := &mockUploader{}
	uploader.On("Bucket").Return("backups-bucket").Maybe()
	uploader.On("Upload", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	},
		backup.WithAttachedDir(attachedDir),
		backup.WithDumpDir(dumpDir),
		backup.WithUploader(uploader),
		backup.WithPurgeLocal(7),
		backup.WithPurgeAttached(7),
		backup.WithNowFunc(func() time.Time { return now }),
	)
	require.NoError(t, err)

	artifact := filepath.Join(localDir, "backup"+timetag.Format(timetag.Layout, now)+".tbz")
	assert.FileExists(t, artifact)
	assert.FileExists(t, filepath.Join(attachedDir, filepath.Base(artifact)))
	uploader.AssertCalled(t, "Upload", mock.Anything, artifact)

	// Purged the aged files, kept the malformed one.
	assert.NoFileExists(t, filepath.Join(localDir, "backup_2020-01-01_00-00.tbz"))
	assert.NoFileExists(t, filepath.Join(attachedDir, "backup_2020-06-01_00-00.tbz"))
	assert.FileExists(t, filepath.Join(localDir, "backup_notes.txt"))

	// Cleanup is on by default.
	assert.NoDirExists(t, dumpDir)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "mongodump", runner.calls[0].name)
}

func TestRunSkipsAttachedPurgeWithoutAttachedDir(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	require.NoError(t, os.MkdirAll(localDir, 0700))

	runner := &scriptedRunner{onRun: dumpSimulator(t)}

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	},
		backup.WithDumpDir(filepath.Join(tmpDir, "scratch")),
		backup.WithPurgeLocal(7),
		backup.WithPurgeAttached(7),
	)

	assert.NoError(t, err)
}

func TestRunStopsOnDumpFailure(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	require.NoError(t, os.MkdirAll(localDir, 0700))

	runner := &scriptedRunner{onRun: func(string, []string) error {
		return errors.New("mongodump exited with code 1")
	}}
	uploader := &mockUploader{}

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	},
		backup.WithDumpDir(filepath.Join(tmpDir, "scratch")),
		backup.WithUploader(uploader),
	)

	assert.Error(t, err)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)

	entries, readErr := os.ReadDir(localDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no backup file may be produced by a failed run")
}

func TestRunKeepsDumpDirWhenCleanupDisabled(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	dumpDir := filepath.Join(tmpDir, "scratch")
	require.NoError(t, os.MkdirAll(localDir, 0700))

	runner := &scriptedRunner{onRun: dumpSimulator(t)}

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	},
		backup.WithDumpDir(dumpDir),
		backup.WithCleanup(false),
	)

	require.NoError(t, err)
	assert.DirExists(t, dumpDir)
}

func TestRunRecordsCatalog(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	require.NoError(t, os.MkdirAll(localDir, 0700))

	cat := newTestCatalog(t)
	runner := &scriptedRunner{onRun: dumpSimulator(t)}
	uploader := &mockUploader{}
	uploader.On("Bucket").Return("backups-bucket")
	uploader.On("Upload", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	},
		backup.WithDumpDir(filepath.Join(tmpDir, "scratch")),
		backup.WithUploader(uploader),
		backup.WithCatalog(cat),
		backup.WithRunID("run-1"),
	)
	require.NoError(t, err)

	runs, err := cat.RecentBackups(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, catalog.StatusSuccess, runs[0].Status)
	assert.Equal(t, "backups-bucket", runs[0].Bucket)
	assert.NotEmpty(t, runs[0].ArtifactPath)
	assert.Greater(t, runs[0].ArtifactSize, int64(0))
	assert.NotEmpty(t, runs[0].ArtifactHash)
}

func TestRunRecordsFailureInCatalog(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, "backups")
	require.NoError(t, os.MkdirAll(localDir, 0700))

	cat := newTestCatalog(t)
	runner := &scriptedRunner{onRun: func(string, []string) error {
		return errors.New("mongodump exited with code 1")
	}}

	err := backup.Run(context.Background(), backup.Params{
		User: "admin", Password: "hunter2", LocalDir: localDir,
		Runner: runner, Logger: logger,
	},
		backup.WithDumpDir(filepath.Join(tmpDir, "scratch")),
		backup.WithCatalog(cat),
		backup.WithRunID("run-1"),
	)
	require.Error(t, err)

	runs, listErr := cat.RecentBackups(context.Background(), 10)
	require.NoError(t, listErr)
	require.Len(t, runs, 1)
	assert.Equal(t, catalog.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "mongodump")
}
