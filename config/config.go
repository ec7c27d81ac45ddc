package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
// It is loaded once at startup and passed into every component constructor.
type Config struct {
	// Object storage
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StorageBucketName      string
	StorageAccountID       string // optional, informational only
	StorageEndpoint        string // e.g. "https://<account>.r2.cloudflarestorage.com"
	StorageDriver          string // "minio" or "s3"
	StorageRegion          string
	StoragePublicURL       string // playback URL base, defaults to the endpoint

	// Transcoding
	FFmpegPath       string
	AudioBitrate     string // e.g., "192k"
	HLSSegmentTime   int    // seconds
	TranscodeTimeout time.Duration
	ScratchDir       string // parent of the per-run scratch directory

	// Upload
	UploadWorkers int

	// Logging
	LogLevel      string
	LogFile       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int

	// Redis prefix lock, disabled when RedisAddr is empty
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PrefixLockTTL time.Duration

	// Publication catalog, disabled when DBHost is empty
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

// ConfigError lists every required configuration key that is missing or invalid.
type ConfigError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "storage configuration: " + strings.Join(parts, "; ") + " (check your .env file)"
}

// getEnv gets an environment variable or returns a default value.
// Additional keys are consulted in order when the first one is unset.
func getEnv(fallback string, keys ...string) string {
	for _, key := range keys {
		if value, exists := os.LookupEnv(key); exists && value != "" {
			return value
		}
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "10m") or plain seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
// Legacy R2_* variable names are accepted when the STORAGE_* name is unset.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		StorageAccessKeyID:     getEnv("", "STORAGE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"),
		StorageSecretAccessKey: getEnv("", "STORAGE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"),
		StorageBucketName:      getEnv("", "STORAGE_BUCKET_NAME", "R2_BUCKET_NAME"),
		StorageAccountID:       getEnv("", "STORAGE_ACCOUNT_ID", "R2_ACCOUNT_ID"),
		StorageEndpoint:        strings.TrimRight(getEnv("", "STORAGE_ENDPOINT", "R2_ENDPOINT"), "/"),
		StorageDriver:          strings.ToLower(getEnv("minio", "STORAGE_DRIVER")),
		StorageRegion:          getEnv("auto", "STORAGE_REGION"),
		StoragePublicURL:       strings.TrimRight(getEnv("", "STORAGE_PUBLIC_URL"), "/"),

		FFmpegPath:       getEnv("ffmpeg", "FFMPEG_PATH"),
		AudioBitrate:     getEnv("192k", "AUDIO_BITRATE"),
		HLSSegmentTime:   getEnvInt("HLS_SEGMENT_TIME", 10),
		TranscodeTimeout: getEnvDuration("TRANSCODE_TIMEOUT", 10*time.Minute),
		ScratchDir:       getEnv(os.TempDir(), "SCRATCH_DIR"),

		UploadWorkers: getEnvInt("UPLOAD_WORKERS", 4),

		LogLevel:      getEnv("info", "LOG_LEVEL"),
		LogFile:       getEnv("", "LOG_FILE"),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 50),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),

		RedisAddr:     getEnv("", "REDIS_ADDR"),
		RedisPassword: getEnv("", "REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		PrefixLockTTL: getEnvDuration("PREFIX_LOCK_TTL", 30*time.Minute),

		DBHost:     getEnv("", "DB_HOST"),
		DBPort:     getEnv("3306", "DB_PORT"),
		DBUser:     getEnv("root", "DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"), // no hardcoded default for the password
		DBName:     getEnv("wav2hls", "DB_NAME"),
	}
}

// Validate reports every required storage value that is absent, plus values that cannot be used.
func (c *Config) Validate() error {
	cfgErr := &ConfigError{}
	required := []struct {
		key   string
		value string
	}{
		{"STORAGE_ACCESS_KEY_ID", c.StorageAccessKeyID},
		{"STORAGE_SECRET_ACCESS_KEY", c.StorageSecretAccessKey},
		{"STORAGE_BUCKET_NAME", c.StorageBucketName},
		{"STORAGE_ENDPOINT", c.StorageEndpoint},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			cfgErr.Missing = append(cfgErr.Missing, r.key)
		}
	}

	if c.StorageEndpoint != "" {
		if _, _, err := c.EndpointHost(); err != nil {
			cfgErr.Invalid = append(cfgErr.Invalid, "STORAGE_ENDPOINT")
		}
	}
	switch c.StorageDriver {
	case "minio", "s3":
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "STORAGE_DRIVER")
	}
	if c.HLSSegmentTime <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "HLS_SEGMENT_TIME")
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// EndpointHost splits the storage endpoint into host[:port] and whether TLS is used.
// An endpoint without a scheme is treated as HTTPS.
func (c *Config) EndpointHost() (host string, secure bool, err error) {
	raw := c.StorageEndpoint
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse storage endpoint %q: %w", c.StorageEndpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("storage endpoint %q has no host", c.StorageEndpoint)
	}
	return u.Host, u.Scheme == "https", nil
}

// PublicBaseURL is the base of published playlist URLs.
func (c *Config) PublicBaseURL() string {
	if c.StoragePublicURL != "" {
		return c.StoragePublicURL
	}
	if !strings.Contains(c.StorageEndpoint, "://") {
		return "https://" + c.StorageEndpoint
	}
	return c.StorageEndpoint
}

// RedisEnabled reports whether the prefix lock should be backed by Redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// CatalogEnabled reports whether publications are recorded in MySQL.
func (c *Config) CatalogEnabled() bool {
	return c.DBHost != ""
}
