package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type Config struct {
	Jobs []Job `yaml:"jobs"`
}

// Job mirrors the backup command's parameter surface for batch execution.
type Job struct {
	Name          string `yaml:"name"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Host          string `yaml:"host,omitempty"`
	Port          int    `yaml:"port,omitempty"`
	Database      string `yaml:"database,omitempty"`
	LocalDir      string `yaml:"local_dir"`
	AttachedDir   string `yaml:"attached_dir,omitempty"`
	DumpDir       string `yaml:"dump_dir,omitempty"`
	Prefix        string `yaml:"prefix,omitempty"`
	S3Bucket      string `yaml:"s3_bucket,omitempty"`
	S3Endpoint    string `yaml:"s3_endpoint,omitempty"`
	S3AccessKey   string `yaml:"s3_access_key,omitempty"`
	S3SecretKey   string `yaml:"s3_secret_key,omitempty"`
	PurgeLocal    int    `yaml:"purge_local,omitempty"`
	PurgeAttached int    `yaml:"purge_attached,omitempty"`
	Cleanup       *bool  `yaml:"cleanup,omitempty"`
	Quiet         bool   `yaml:"quiet,omitempty"`
	Enable        bool   `yaml:"enable"`
}

func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("job must have a name")
	}
	if j.User == "" {
		return fmt.Errorf("job must have a user")
	}
	if j.Password == "" {
		return fmt.Errorf("job must have a password")
	}
	if j.LocalDir == "" {
		return fmt.Errorf("job must have a local backup directory")
	}
	if j.S3Bucket != "" && (j.S3AccessKey == "" || j.S3SecretKey == "") {
		return fmt.Errorf("job with an s3 bucket must have access and secret keys")
	}
	return nil
}

// CleanupEnabled resolves the optional cleanup toggle; absent means on.
func (j Job) CleanupEnabled() bool {
	if j.Cleanup == nil {
		return true
	}
	return *j.Cleanup
}

// Passwords and secret keys are deliberately absent.
func (j Job) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", j.Name)
	e.Str("user", j.User)
	e.Str("local_dir", j.LocalDir)
	e.Bool("enable", j.Enable)

	if j.Host != "" {
		e.Str("host", j.Host)
	}
	if j.Port > 0 {
		e.Int("port", j.Port)
	}
	if j.Database != "" {
		e.Str("database", j.Database)
	}
	if j.AttachedDir != "" {
		e.Str("attached_dir", j.AttachedDir)
	}
	if j.S3Bucket != "" {
		e.Str("s3_bucket", j.S3Bucket)
	}
	if j.PurgeLocal > 0 {
		e.Int("purge_local", j.PurgeLocal)
	}
	if j.PurgeAttached > 0 {
		e.Int("purge_attached", j.PurgeAttached)
	}
}
