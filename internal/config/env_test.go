package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"PDF_BACKEND", "BATCH_CONCURRENCY", "SLOW_DOCUMENT_THRESHOLD", "INPUT_DIR", "OUTPUT_DIR", "MAX_UPLOAD_MB", "MAX_INFLIGHT", "REDIS_URL"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()
	if cfg.Ingest.Backend != "pdf" {
		t.Errorf("backend = %q", cfg.Ingest.Backend)
	}
	if cfg.Batch.Concurrency != 1 || cfg.Batch.SlowThreshold != 10*time.Second {
		t.Errorf("batch = %+v", cfg.Batch)
	}
	if cfg.Batch.InputDir != "/app/input" || cfg.Batch.OutputDir != "/app/output" {
		t.Errorf("dirs = %q %q", cfg.Batch.InputDir, cfg.Batch.OutputDir)
	}
	if cfg.Server.MaxUploadBytes != 50<<20 {
		t.Errorf("max upload = %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.Server.MaxInflight != 4 {
		t.Errorf("max inflight = %d", cfg.Server.MaxInflight)
	}
	if cfg.Cache.RedisURL != "" {
		t.Errorf("cache should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PDF_BACKEND", "MuPDF")
	t.Setenv("BATCH_CONCURRENCY", "4")
	t.Setenv("SLOW_DOCUMENT_THRESHOLD", "2s")
	t.Setenv("PDF_PREFLIGHT", "off")
	cfg := FromEnv()
	if cfg.Ingest.Backend != "mupdf" || cfg.Ingest.Preflight {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	if cfg.Batch.Concurrency != 4 || cfg.Batch.SlowThreshold != 2*time.Second {
		t.Errorf("batch = %+v", cfg.Batch)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
		key  string
	}{
		{"backend", func(c *Config) { c.Ingest.Backend = "poppler" }, "PDF_BACKEND"},
		{"concurrency", func(c *Config) { c.Batch.Concurrency = 0 }, "BATCH_CONCURRENCY"},
		{"upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "MAX_UPLOAD_MB"},
		{"inflight", func(c *Config) { c.Server.MaxInflight = 0 }, "MAX_INFLIGHT"},
		{"s3 uri", func(c *Config) { c.S3.OutputURI = "bucket/prefix" }, "S3_OUTPUT_URI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			cfg.Ingest.Backend = "pdf"
			cfg.Batch.Concurrency = 1
			tt.mod(&cfg)
			err := cfg.Validate()
			var cerr *Error
			if !errors.As(err, &cerr) || cerr.Key != tt.key {
				t.Fatalf("Validate() = %v, want config error for %s", err, tt.key)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file: %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("OUTLINER_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTLINER_TEST_VALUE", "")
	os.Unsetenv("OUTLINER_TEST_VALUE")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("OUTLINER_TEST_VALUE"); got != "from-file" {
		t.Errorf("value = %q", got)
	}
}
