package catalog

import (
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type BackupRun struct {
	ID           string `gorm:"primaryKey"`
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Error        string
	Prefix       string
	LocalDir     string
	AttachedDir  string
	Bucket       string
	ArtifactPath string
	ArtifactSize int64
	ArtifactHash string
}

type RestoreRun struct {
	ID          string `gorm:"primaryKey"`
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      string
	Error       string
	ArchivePath string
	StagingDir  string
}
