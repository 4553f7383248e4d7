// Package s3 pushes backup files to an S3-compatible object store.
package s3

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

const defaultEndpoint = "s3.amazonaws.com"

type Config struct {
	Endpoint  string // Defaults to s3.amazonaws.com.
	Bucket    string
	AccessKey string
	SecretKey string
}

type Uploader struct {
	cli    *minio.Client
	bucket string
	logger zerolog.Logger
}

func NewUploader(cfg Config, logger zerolog.Logger) (*Uploader, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create object store client: %w", err)
	}

	return &Uploader{
		cli:    cli,
		bucket: cfg.Bucket,
		logger: logger.With().Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

func (u *Uploader) Bucket() string {
	return u.bucket
}

// Upload pushes the file at path to the bucket. The object key is the file's
// base name, matching the backup file naming convention.
func (u *Uploader) Upload(ctx context.Context, path string) error {
	key := filepath.Base(path)

	u.logger.Info().Str("key", key).Msg("uploading backup file")
	info, err := u.cli.FPutObject(ctx, u.bucket, key, path, minio.PutObjectOptions{
		ContentType: "application/x-bzip2",
	})
	if err != nil {
		return fmt.Errorf("could not upload %s: %w", path, err)
	}

	u.logger.Info().Str("key", key).Int64("size", info.Size).Msg("uploaded backup file")

	return nil
}
