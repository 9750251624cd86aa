package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryConfig holds Cloudinary account credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// Cloudinary stores objects as Cloudinary assets. The bucket becomes the
// folder and the path (without extension) the public ID. Audio is a "video"
// resource type in Cloudinary. Without Overwrite an existing asset is kept
// and the upload still succeeds.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

const cloudinaryAudioType = "video"

// NewCloudinary creates a Cloudinary-backed store.
func NewCloudinary(cfg CloudinaryConfig) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("create cloudinary client: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

// publicID maps (bucket, path) to a Cloudinary public ID.
func publicID(bucket, p string) string {
	p = strings.TrimSuffix(p, path.Ext(p))
	return strings.Trim(bucket, "/") + "/" + strings.TrimLeft(p, "/")
}

func (c *Cloudinary) Upload(ctx context.Context, obj Object) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	overwrite := obj.Overwrite
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(obj.Data), uploader.UploadParams{
		PublicID:     publicID(obj.Bucket, obj.Path),
		ResourceType: cloudinaryAudioType,
		Overwrite:    &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", obj.Bucket, obj.Path, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("upload %s/%s: %s", obj.Bucket, obj.Path, res.Error.Message)
	}
	return obj.Path, nil
}

func (c *Cloudinary) Delete(ctx context.Context, bucket, p string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID(bucket, p),
		ResourceType: cloudinaryAudioType,
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", bucket, p, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("delete %s/%s: %s", bucket, p, res.Error.Message)
	}
	return nil
}
