package backup

import (
	"time"

	"github.com/mongobak/mongobak/catalog"
)

const (
	defaultScratchDir = "/tmp/mongo_dump"
	defaultPrefix     = "backup"
)

type options struct {
	host          string
	port          int
	database      string
	attachedDir   string
	dumpDir       string
	prefix        string
	uploader      Uploader
	purgeLocal    int
	purgeAttached int
	cleanup       bool
	quiet         bool
	runID         string
	catalog       *catalog.Catalog
	now           func() time.Time
}

func defaultOptions() options {
	return options{
		dumpDir: defaultScratchDir,
		prefix:  defaultPrefix,
		cleanup: true,
		now:     time.Now,
	}
}

type Option func(o *options)

func WithHost(host string) Option {
	return func(o *options) {
		o.host = host
	}
}

func WithPort(port int) Option {
	return func(o *options) {
		o.port = port
	}
}

// WithDatabase dumps a single database instead of every database on the
// server.
func WithDatabase(database string) Option {
	return func(o *options) {
		o.database = database
	}
}

// WithAttachedDir replicates the backup file into a second directory. The
// directory must already exist; it is checked before any other work starts.
func WithAttachedDir(path string) Option {
	return func(o *options) {
		o.attachedDir = path
	}
}

// WithDumpDir overrides the scratch directory the dump is written into.
func WithDumpDir(path string) Option {
	return func(o *options) {
		if path != "" {
			o.dumpDir = path
		}
	}
}

func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

func WithUploader(uploader Uploader) Option {
	return func(o *options) {
		o.uploader = uploader
	}
}

// WithPurgeLocal deletes backup files older than days from the local backup
// directory after the new backup completes.
func WithPurgeLocal(days int) Option {
	return func(o *options) {
		o.purgeLocal = days
	}
}

// WithPurgeAttached deletes backup files older than days from the attached
// directory. A no-op when no attached directory is configured.
func WithPurgeAttached(days int) Option {
	return func(o *options) {
		o.purgeAttached = days
	}
}

// WithCleanup controls whether the scratch dump directory is removed after a
// successful run. On by default.
func WithCleanup(cleanup bool) Option {
	return func(o *options) {
		o.cleanup = cleanup
	}
}

func WithQuiet(quiet bool) Option {
	return func(o *options) {
		o.quiet = quiet
	}
}

func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

func WithCatalog(cat *catalog.Catalog) Option {
	return func(o *options) {
		o.catalog = cat
	}
}

// WithNowFunc overrides the clock used for the backup file time tag and the
// purge cutoffs.
func WithNowFunc(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

type restoreOptions struct {
	host       string
	port       int
	stagingDir string
	drop       bool
	skipUsers  bool
	cleanup    bool
	quiet      bool
	runID      string
	catalog    *catalog.Catalog
}

func defaultRestoreOptions() restoreOptions {
	return restoreOptions{
		stagingDir: defaultScratchDir,
		cleanup:    true,
	}
}

type RestoreOption func(o *restoreOptions)

func WithRestoreHost(host string) RestoreOption {
	return func(o *restoreOptions) {
		o.host = host
	}
}

func WithRestorePort(port int) RestoreOption {
	return func(o *restoreOptions) {
		o.port = port
	}
}

// WithStagingDir overrides the directory the archive is extracted into. It
// must not already exist.
func WithStagingDir(path string) RestoreOption {
	return func(o *restoreOptions) {
		if path != "" {
			o.stagingDir = path
		}
	}
}

// WithDropDatabase drops the ENTIRE running database before loading.
// Irreversible; off by default.
func WithDropDatabase(drop bool) RestoreOption {
	return func(o *restoreOptions) {
		o.drop = drop
	}
}

// WithSkipUsers removes the admin subtree from the staging directory before
// restoring, so system and user account records from a differently-versioned
// source server are not loaded. A no-op when the subtree is absent.
func WithSkipUsers(skip bool) RestoreOption {
	return func(o *restoreOptions) {
		o.skipUsers = skip
	}
}

// WithRestoreCleanup controls whether the staging directory is removed after
// a successful restore. On by default; a failed restore always leaves the
// staging directory for inspection.
func WithRestoreCleanup(cleanup bool) RestoreOption {
	return func(o *restoreOptions) {
		o.cleanup = cleanup
	}
}

func WithRestoreQuiet(quiet bool) RestoreOption {
	return func(o *restoreOptions) {
		o.quiet = quiet
	}
}

func WithRestoreRunID(id string) RestoreOption {
	return func(o *restoreOptions) {
		o.runID = id
	}
}

func WithRestoreCatalog(cat *catalog.Catalog) RestoreOption {
	return func(o *restoreOptions) {
		o.catalog = cat
	}
}
