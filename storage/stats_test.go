package storage

import (
	"bytes"
	"context"
	"testing"
	"time"

	"wav2hls/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.size))
	}
}

func TestSummarize(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	stats := Summarize([]ObjectInfo{
		{Key: "audio/song/index.m3u8", Size: 200, LastModified: older},
		{Key: "audio/song/segment_000.wav", Size: 1800, LastModified: newer},
	})

	assert.Equal(t, BucketStats{TotalObjects: 2, TotalSize: 2000, LastModified: newer}, stats)
}

func TestWriteTree(t *testing.T) {
	var buf bytes.Buffer
	WriteTree(&buf, []ObjectInfo{
		{Key: "audio/song/segment_000.wav", Size: 2048},
		{Key: "audio/song/index.m3u8", Size: 100},
		{Key: "readme.txt", Size: 10},
	})

	assert.Equal(t, "📄 readme.txt (10 B)\n"+
		"  📁 audio/song/\n"+
		"    📄 index.m3u8 (100 B)\n"+
		"    📄 segment_000.wav (2.0 KB)\n", buf.String())
}

func TestNewSelectsDriver(t *testing.T) {
	cfg := &config.Config{
		StorageAccessKeyID:     "key",
		StorageSecretAccessKey: "secret",
		StorageEndpoint:        "http://localhost:9000",
		StorageRegion:          "auto",
	}

	cfg.StorageDriver = "minio"
	store, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MinioStore{}, store)

	cfg.StorageDriver = "s3"
	store, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)

	cfg.StorageDriver = "gcs"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
