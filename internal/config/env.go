package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// IngestConfig selects the PDF backend.
type IngestConfig struct {
	Backend   string // "pdf"|"mupdf"
	Preflight bool
}

// BatchConfig drives the directory runner.
type BatchConfig struct {
	InputDir      string
	OutputDir     string
	Concurrency   int
	SlowThreshold time.Duration
}

// PersonaConfig drives the persona runner.
type PersonaConfig struct {
	InputDir   string
	ConfigFile string
	OutputFile string
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Port           string
	APIKey         string
	MaxUploadBytes int64
	MaxInflight    int
	RequestTimeout time.Duration
}

// S3Config is used when an input or output location is an s3:// URI.
type S3Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	OutputURI       string
}

// CacheConfig configures the Redis result cache. Empty URL disables it.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// Config is the top-level configuration.
type Config struct {
	Logging    LoggingConfig
	Axiom      AxiomConfig
	Ingest     IngestConfig
	Batch      BatchConfig
	Persona    PersonaConfig
	Server     ServerConfig
	S3         S3Config
	Cache      CacheConfig
	PolicyFile string
}

// Error reports an invalid setting.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// LoadDotEnv loads variables from path (".env" when empty) without
// overriding what is already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_outliner",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Ingest = IngestConfig{
		Backend:   strings.ToLower(getEnv("PDF_BACKEND", "pdf")),
		Preflight: parseBool(getEnv("PDF_PREFLIGHT", "true")),
	}

	cfg.Batch = BatchConfig{
		InputDir:      getEnv("INPUT_DIR", "/app/input"),
		OutputDir:     getEnv("OUTPUT_DIR", "/app/output"),
		Concurrency:   parseInt(getEnv("BATCH_CONCURRENCY", "1"), 1),
		SlowThreshold: parseDuration(getEnv("SLOW_DOCUMENT_THRESHOLD", "10s"), 10*time.Second),
	}

	cfg.Persona = PersonaConfig{
		InputDir:   getEnv("PERSONA_INPUT_DIR", "/app/input"),
		ConfigFile: getEnv("PERSONA_CONFIG", "challenge1b_input.json"),
		OutputFile: getEnv("PERSONA_OUTPUT", "/app/output/challenge1b_output.json"),
	}

	cfg.Server = ServerConfig{
		Port:           getEnv("PORT", "8080"),
		APIKey:         getEnv("API_KEY", ""),
		MaxUploadBytes: int64(parseInt(getEnv("MAX_UPLOAD_MB", "50"), 50)) << 20,
		MaxInflight:    parseInt(getEnv("MAX_INFLIGHT", "4"), 4),
		RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "60s"), 60*time.Second),
	}

	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", getEnv("AWS_REGION", "us-east-1")),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		OutputURI:       getEnv("S3_OUTPUT_URI", ""),
	}

	cfg.Cache = CacheConfig{
		RedisURL: getEnv("REDIS_URL", ""),
		TTL:      parseDuration(getEnv("CACHE_TTL", "24h"), 24*time.Hour),
	}

	cfg.PolicyFile = getEnv("OUTLINE_POLICY_FILE", "")
	return cfg
}

// Validate checks the settings every mode depends on.
func (c Config) Validate() error {
	switch c.Ingest.Backend {
	case "pdf", "mupdf":
	default:
		return &Error{Key: "PDF_BACKEND", Reason: fmt.Sprintf("unknown backend %q", c.Ingest.Backend)}
	}
	if c.Batch.Concurrency < 1 {
		return &Error{Key: "BATCH_CONCURRENCY", Reason: "must be at least 1"}
	}
	if c.Server.MaxInflight < 1 {
		return &Error{Key: "MAX_INFLIGHT", Reason: "must be at least 1"}
	}
	if c.Server.MaxUploadBytes <= 0 {
		return &Error{Key: "MAX_UPLOAD_MB", Reason: "must be positive"}
	}
	if c.S3.OutputURI != "" && !strings.HasPrefix(c.S3.OutputURI, "s3://") {
		return &Error{Key: "S3_OUTPUT_URI", Reason: "must start with s3://"}
	}
	return nil
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
