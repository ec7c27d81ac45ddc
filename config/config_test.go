package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearStorageEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORAGE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID",
		"STORAGE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY",
		"STORAGE_BUCKET_NAME", "R2_BUCKET_NAME",
		"STORAGE_ACCOUNT_ID", "R2_ACCOUNT_ID",
		"STORAGE_ENDPOINT", "R2_ENDPOINT",
		"STORAGE_DRIVER", "HLS_SEGMENT_TIME", "TRANSCODE_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadPrefersStorageNames(t *testing.T) {
	clearStorageEnv(t)
	t.Setenv("STORAGE_ACCESS_KEY_ID", "new-key")
	t.Setenv("R2_ACCESS_KEY_ID", "old-key")
	t.Setenv("R2_BUCKET_NAME", "legacy-bucket")
	t.Setenv("STORAGE_ENDPOINT", "https://acct.r2.cloudflarestorage.com/")

	cfg := Load()

	assert.Equal(t, "new-key", cfg.StorageAccessKeyID)
	assert.Equal(t, "legacy-bucket", cfg.StorageBucketName)
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.StorageEndpoint)
	assert.Equal(t, "minio", cfg.StorageDriver)
	assert.Equal(t, "192k", cfg.AudioBitrate)
	assert.Equal(t, 10, cfg.HLSSegmentTime)
}

func TestLoadTranscodeTimeout(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 10 * time.Minute},
		{"90s", 90 * time.Second},
		{"120", 120 * time.Second},
		{"soon", 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			clearStorageEnv(t)
			t.Setenv("TRANSCODE_TIMEOUT", tt.value)
			assert.Equal(t, tt.want, Load().TranscodeTimeout)
		})
	}
}

func TestValidateReportsAllMissingKeys(t *testing.T) {
	cfg := &Config{StorageDriver: "minio", HLSSegmentTime: 10, StorageAccountID: ""}

	err := cfg.Validate()

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{
		"STORAGE_ACCESS_KEY_ID",
		"STORAGE_SECRET_ACCESS_KEY",
		"STORAGE_BUCKET_NAME",
		"STORAGE_ENDPOINT",
	}, cfgErr.Missing)
	assert.Empty(t, cfgErr.Invalid)
}

func TestValidateAccountIDOptional(t *testing.T) {
	cfg := &Config{
		StorageAccessKeyID:     "k",
		StorageSecretAccessKey: "s",
		StorageBucketName:      "b",
		StorageEndpoint:        "https://example.com",
		StorageDriver:          "s3",
		HLSSegmentTime:         10,
	}
	require.NoError(t, cfg.Validate())
}

func TestValidateInvalidValues(t *testing.T) {
	cfg := &Config{
		StorageAccessKeyID:     "k",
		StorageSecretAccessKey: "s",
		StorageBucketName:      "b",
		StorageEndpoint:        "https://",
		StorageDriver:          "gcs",
		HLSSegmentTime:         0,
	}

	var cfgErr *ConfigError
	require.True(t, errors.As(cfg.Validate(), &cfgErr))
	assert.Empty(t, cfgErr.Missing)
	assert.ElementsMatch(t, []string{"STORAGE_ENDPOINT", "STORAGE_DRIVER", "HLS_SEGMENT_TIME"}, cfgErr.Invalid)
}

func TestEndpointHost(t *testing.T) {
	tests := []struct {
		endpoint   string
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{"https://acct.r2.cloudflarestorage.com", "acct.r2.cloudflarestorage.com", true, false},
		{"http://localhost:9000", "localhost:9000", false, false},
		{"play.min.io", "play.min.io", true, false},
		{"https://", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			cfg := &Config{StorageEndpoint: tt.endpoint}
			host, secure, err := cfg.EndpointHost()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantSecure, secure)
		})
	}
}

func TestPublicBaseURL(t *testing.T) {
	cfg := &Config{StorageEndpoint: "https://acct.r2.cloudflarestorage.com"}
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.PublicBaseURL())

	cfg.StorageEndpoint = "minio.local:9000"
	assert.Equal(t, "https://minio.local:9000", cfg.PublicBaseURL())

	cfg.StoragePublicURL = "https://cdn.example.com"
	assert.Equal(t, "https://cdn.example.com", cfg.PublicBaseURL())
}
