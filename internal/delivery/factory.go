package delivery

import (
	"context"
	"fmt"

	"vshield-go/internal/config"
)

// NewUploaderFromConfig creates an Uploader implementation based on the delivery config type.
func NewUploaderFromConfig(ctx context.Context, cfg config.DeliveryConfig) (Uploader, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryUploader(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem delivery requires fs_root to be set")
		}
		return NewFileSystemUploader(cfg.FSRoot)
	case "s3":
		return NewS3Uploader(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case "":
		return nil, fmt.Errorf("no delivery backend configured")
	default:
		return nil, fmt.Errorf("unknown delivery type: %s", cfg.Type)
	}
}
