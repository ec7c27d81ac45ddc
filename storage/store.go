package storage

import (
	"context"
	"fmt"
	"time"

	"wav2hls/config"
)

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
	ETag         string
}

// ObjectStore is the subset of an S3-compatible API the publisher needs.
// Implementations rely on their SDK's built-in retry for transient network errors.
type ObjectStore interface {
	// ListObjects returns every object whose key starts with prefix, recursively.
	ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error)
	// PutFile uploads the file at localPath to key.
	PutFile(ctx context.Context, bucket, key, localPath, contentType string) error
	// RemoveObjects deletes keys; deleting an absent key is not an error.
	RemoveObjects(ctx context.Context, bucket string, keys []string) error
}

// New builds the store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config) (ObjectStore, error) {
	switch cfg.StorageDriver {
	case "", "minio":
		return NewMinioStore(cfg)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
