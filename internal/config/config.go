// Package config loads application configuration from environment
// variables. Required values are enforced by must() and abort startup when
// missing; optional values fall back to defaults that match a local dev
// setup.
package config

import (
	"log"
	"os"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used:
// strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment ("dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBMaxConns     int    // connection pool size (open and idle)
	JWTSecret      string // secret used to sign session JWTs
	SessionTTLMin  int    // session token time-to-live in minutes (default one day)
	BcryptCost     int    // bcrypt cost for password hashing
	ResetTTLMin    int    // password-reset token time-to-live in minutes
	UploadDir      string // directory for DOCUMENT resource blobs
	MaxUploadBytes int64  // upload size limit in bytes
	FrontendURL    string // base URL embedded in password-reset links
}

// Load reads configuration values from environment variables and returns a
// Config. Missing required variables cause a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMaxConns:     envInt("DB_MAX_CONNS", 25),
		JWTSecret:      must("JWT_SECRET"),
		SessionTTLMin:  envInt("SESSION_TTL_MIN", 1440),
		BcryptCost:     envInt("BCRYPT_COST", 10),
		ResetTTLMin:    envInt("RESET_TOKEN_TTL_MIN", 10),
		UploadDir:      envStr("UPLOAD_DIR", "uploads/documents"),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,
		FrontendURL:    envStr("FRONTEND_URL", "http://localhost:5173"),
	}
}

// IsDev reports whether diagnostic detail may be included in error
// responses. Production builds suppress it.
func (c Config) IsDev() bool { return c.Env != "prod" }

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
