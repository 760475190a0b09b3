package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the runtime settings of the server.
type Config struct {
	Port           int
	DatabasePath   string
	JWTSecret      string
	TokenTTL       time.Duration
	UploadDir      string
	MaxUploadBytes int64
	CORSOrigin     string
	LogLevel       logrus.Level
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	port, err := strconv.Atoi(get("PORT", "5000"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid PORT %q", get("PORT", ""))
	}

	ttl, err := time.ParseDuration(get("TOKEN_TTL", "168h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid TOKEN_TTL %q", get("TOKEN_TTL", ""))
	}

	maxUpload, err := strconv.ParseInt(get("MAX_UPLOAD_BYTES", "5242880"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", get("MAX_UPLOAD_BYTES", ""))
	}

	level, err := logrus.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return &Config{
		Port:           port,
		DatabasePath:   get("DATABASE_PATH", "data/badger"),
		JWTSecret:      getenv("JWT_SECRET"),
		TokenTTL:       ttl,
		UploadDir:      get("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: maxUpload,
		CORSOrigin:     get("CORS_ORIGIN", "http://localhost:3000"),
		LogLevel:       level,
	}, nil
}

// Validate reports settings that are required to serve traffic.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
