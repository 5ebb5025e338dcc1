package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "readshelf")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()

	assert.Equal(t, 25, cfg.DBMaxConns)
	assert.Equal(t, 1440, cfg.SessionTTLMin)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.True(t, cfg.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("MAX_UPLOAD_MB", "2")

	cfg := Load()

	assert.Equal(t, 50, cfg.DBMaxConns)
	assert.Equal(t, int64(2*1024*1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.IsDev())
}

func TestEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	assert.Equal(t, 25, envInt("DB_MAX_CONNS", 25))
}
