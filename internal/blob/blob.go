// Package blob stores audio objects addressed by bucket and path.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/voicejournal/internal/config"
)

// ErrExists is returned by Upload when overwrite is false and the object is
// already present.
var ErrExists = errors.New("object already exists")

// Object describes an upload.
type Object struct {
	Bucket      string
	Path        string
	Data        []byte
	ContentType string
	Overwrite   bool
}

// Store uploads and deletes binary objects.
type Store interface {
	// Upload writes the object and returns its path within the bucket.
	Upload(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, bucket, path string) error
}

// New builds the store selected by cfg.BlobBackend.
func New(ctx context.Context, cfg config.Config) (Store, error) {
	slog.Info("setting up blob store", "backend", cfg.BlobBackend)

	switch cfg.BlobBackend {
	case config.BlobS3:
		return NewS3(ctx, S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case config.BlobCloudinary:
		return NewCloudinary(CloudinaryConfig{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
		})
	case config.BlobMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported blob backend: %s (supported: s3, cloudinary, memory)", cfg.BlobBackend)
	}
}
