// Package config reads tmfstock settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tmfstock/internal/blob"
)

// Attachment encoding modes.
const (
	AttachmentDataURL = "dataurl"
	AttachmentBlob    = "blob"
)

// Config holds all runtime settings.
type Config struct {
	Server      ServerConfig
	Session     SessionConfig
	Attachments AttachmentConfig
	Blob        blob.Config

	// Seed loads the demo inventory at startup.
	Seed bool

	// OverdueSchedule is a cron spec for the overdue sweep; empty disables it.
	OverdueSchedule string

	// UsersFile replaces the demo accounts with a JSON user list.
	UsersFile string
	Debug     bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig configures session tokens.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// AttachmentConfig configures receipt uploads.
type AttachmentConfig struct {
	Mode    string
	MaxSize int64
}

// LoadEnv loads the given .env files (default ".env") into the process
// environment. Missing files are ignored; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:         getEnv("TMFSTOCK_ADDR", ":8080"),
			ReadTimeout:  getDuration("TMFSTOCK_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("TMFSTOCK_WRITE_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			Secret: os.Getenv("TMFSTOCK_SESSION_SECRET"),
			TTL:    getDuration("TMFSTOCK_SESSION_TTL", 12*time.Hour),
		},
		Attachments: AttachmentConfig{
			Mode:    strings.ToLower(getEnv("TMFSTOCK_ATTACHMENT_MODE", AttachmentDataURL)),
			MaxSize: getInt64("TMFSTOCK_ATTACHMENT_MAX_BYTES", 5<<20),
		},
		Blob: blob.Config{
			Driver: blob.Driver(getEnv("TMFSTOCK_BLOB_DRIVER", string(blob.DriverMemory))),
			FSRoot: os.Getenv("TMFSTOCK_BLOB_FS_ROOT"),
			S3: blob.S3Config{
				Bucket:          os.Getenv("TMFSTOCK_BLOB_S3_BUCKET"),
				Region:          os.Getenv("TMFSTOCK_BLOB_S3_REGION"),
				Endpoint:        os.Getenv("TMFSTOCK_BLOB_S3_ENDPOINT"),
				AccessKeyID:     os.Getenv("TMFSTOCK_BLOB_S3_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("TMFSTOCK_BLOB_S3_SECRET_ACCESS_KEY"),
				PathStyle:       getBool("TMFSTOCK_BLOB_S3_PATH_STYLE", false),
			},
		},
		Seed:            getBool("TMFSTOCK_SEED", true),
		OverdueSchedule: strings.TrimSpace(os.Getenv("TMFSTOCK_OVERDUE_SCHEDULE")),
		UsersFile:       os.Getenv("TMFSTOCK_USERS_FILE"),
		Debug:           getBool("TMFSTOCK_DEBUG", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Attachments.Mode {
	case AttachmentDataURL, AttachmentBlob:
	default:
		return fmt.Errorf("TMFSTOCK_ATTACHMENT_MODE: unknown mode %q", c.Attachments.Mode)
	}
	if c.Attachments.MaxSize <= 0 {
		return errors.New("TMFSTOCK_ATTACHMENT_MAX_BYTES must be positive")
	}
	if c.Blob.Driver == blob.DriverS3 && c.Blob.S3.Bucket == "" {
		return errors.New("TMFSTOCK_BLOB_S3_BUCKET required for the s3 blob driver")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// getBool accepts 1/true/yes/on and 0/false/no/off; anything else keeps def.
func getBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		return d
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if n, err := strconv.ParseInt(strings.TrimSpace(os.Getenv(key)), 10, 64); err == nil {
		return n
	}
	return def
}
