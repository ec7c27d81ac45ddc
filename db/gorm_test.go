package db

import (
	"testing"

	"wav2hls/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBUser: "root", DBPassword: "secret", DBHost: "db.local", DBPort: "3306", DBName: "wav2hls"}
	assert.Equal(t, "root:secret@tcp(db.local:3306)/wav2hls?charset=utf8mb4&parseTime=True&loc=Local", DSN(cfg))
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
