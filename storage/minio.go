package storage

import (
	"context"
	"errors"
	"fmt"

	"wav2hls/config"
	"wav2hls/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 封装了 MinIO 客户端. Works against any S3-compatible endpoint (R2, MinIO, S3).
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore 创建一个新的 MinIO 客户端
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	host, secure, err := cfg.EndpointHost()
	if err != nil {
		return nil, err
	}

	logger.Debug("creating minio client",
		logger.String("endpoint", host),
		logger.Bool("secure", secure),
		logger.String("region", cfg.StorageRegion))

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKeyID, cfg.StorageSecretAccessKey, ""),
		Secure: secure,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	return &MinioStore{client: client}, nil
}

func (m *MinioStore) ListObjects(ctx context.Context, bucket, prefix string) ([]ObjectInfo, error) {
	// cancelling stops the listing goroutine if we return early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []ObjectInfo
	objectCh := m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
			ETag:         object.ETag,
		})
	}
	return objects, nil
}

func (m *MinioStore) PutFile(ctx context.Context, bucket, key, localPath, contentType string) error {
	_, err := m.client.FPutObject(ctx, bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (m *MinioStore) RemoveObjects(ctx context.Context, bucket string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var errs []error
	for rerr := range m.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rerr.Err != nil {
			errs = append(errs, fmt.Errorf("删除对象 %s 失败: %w", rerr.ObjectName, rerr.Err))
		}
	}
	return errors.Join(errs...)
}
