package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tmfstock/internal/blob"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"TMFSTOCK_ADDR", "TMFSTOCK_SESSION_TTL", "TMFSTOCK_SEED", "TMFSTOCK_ATTACHMENT_MODE", "TMFSTOCK_BLOB_DRIVER", "TMFSTOCK_OVERDUE_SCHEDULE", "TMFSTOCK_ATTACHMENT_MAX_BYTES"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Session.TTL != 12*time.Hour || !cfg.Seed {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Attachments.Mode != AttachmentDataURL || cfg.Attachments.MaxSize != 5<<20 || cfg.Blob.Driver != blob.DriverMemory {
		t.Fatalf("unexpected attachment defaults %+v %+v", cfg.Attachments, cfg.Blob)
	}
	if cfg.OverdueSchedule != "" {
		t.Fatalf("overdue sweep must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TMFSTOCK_ADDR", "127.0.0.1:9000")
	t.Setenv("TMFSTOCK_SESSION_SECRET", "k")
	t.Setenv("TMFSTOCK_SESSION_TTL", "30m")
	t.Setenv("TMFSTOCK_SEED", "no")
	t.Setenv("TMFSTOCK_ATTACHMENT_MODE", "BLOB")
	t.Setenv("TMFSTOCK_BLOB_DRIVER", "s3")
	t.Setenv("TMFSTOCK_BLOB_S3_BUCKET", "tmf")
	t.Setenv("TMFSTOCK_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("TMFSTOCK_OVERDUE_SCHEDULE", " @every 1h ")
	t.Setenv("TMFSTOCK_DEBUG", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Session.Secret != "k" || cfg.Session.TTL != 30*time.Minute || cfg.Seed {
		t.Fatalf("unexpected server/session %+v", cfg)
	}
	if cfg.Attachments.Mode != AttachmentBlob || cfg.Blob.Driver != blob.DriverS3 || cfg.Blob.S3.Bucket != "tmf" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("unexpected blob settings %+v", cfg.Blob)
	}
	if cfg.OverdueSchedule != "@every 1h" || !cfg.Debug {
		t.Fatalf("unexpected misc settings %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("TMFSTOCK_ATTACHMENT_MODE", "ftp")
	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	t.Setenv("TMFSTOCK_ATTACHMENT_MODE", "")
	t.Setenv("TMFSTOCK_BLOB_DRIVER", "s3")
	t.Setenv("TMFSTOCK_BLOB_S3_BUCKET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	t.Setenv("TMFSTOCK_BLOB_DRIVER", "")
	t.Setenv("TMFSTOCK_ATTACHMENT_MAX_BYTES", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected max size error")
	}
}

func TestHelpersFallBack(t *testing.T) {
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_INT", "ten")
	if !getBool("X_BOOL", true) || getDuration("X_DUR", time.Second) != time.Second || getInt64("X_INT", 7) != 7 {
		t.Fatalf("invalid values must fall back to defaults")
	}
	t.Setenv("X_DUR", "-5s")
	if getDuration("X_DUR", time.Second) != time.Second {
		t.Fatalf("negative durations must fall back")
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("TMFSTOCK_ENV_PROBE=from-file\nTMFSTOCK_ENV_KEEP=from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("TMFSTOCK_ENV_KEEP", "from-env")
	t.Setenv("TMFSTOCK_ENV_PROBE", "")
	os.Unsetenv("TMFSTOCK_ENV_PROBE")

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv("TMFSTOCK_ENV_PROBE"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("TMFSTOCK_ENV_KEEP"); got != "from-env" {
		t.Fatalf("existing variables must win, got %q", got)
	}
}
