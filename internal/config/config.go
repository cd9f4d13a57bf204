package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the DocVault API.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Storage  StorageConfig
	MinIO    MinIOConfig
	Render   RenderConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// StorageConfig selects and parameterizes the blob store backend.
type StorageConfig struct {
	Backend      string // "disk" or "minio"
	UploadDir    string
	ThumbnailDir string
	MaxFileSize  int64
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// RenderConfig parameterizes the thumbnail renderer.
type RenderConfig struct {
	ThumbnailDPI int
	Workers      int
	Timeout      time.Duration
}

// LoggingConfig groups structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("DOCVAULT_API_HOST", "0.0.0.0"),
			Port:         getInt("DOCVAULT_API_PORT", 8080),
			ReadTimeout:  getDuration("DOCVAULT_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("DOCVAULT_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("DOCVAULT_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "docvault_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "docvault"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		Storage: StorageConfig{
			Backend:      strings.ToLower(getString("DOCVAULT_STORAGE_BACKEND", "disk")),
			UploadDir:    getString("DOCVAULT_UPLOAD_DIR", "./uploads"),
			ThumbnailDir: getString("DOCVAULT_THUMBNAIL_DIR", "thumbnails"),
			MaxFileSize:  getInt64("DOCVAULT_MAX_FILE_SIZE", 7*1024*1024),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "docvault"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "docvault"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Render: RenderConfig{
			ThumbnailDPI: getInt("DOCVAULT_THUMBNAIL_DPI", 92),
			Workers:      getInt("DOCVAULT_RENDER_WORKERS", 1),
			Timeout:      getDuration("DOCVAULT_RENDER_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(getString("DOCVAULT_LOG_LEVEL", "info")),
			Format: strings.ToLower(getString("DOCVAULT_LOG_FORMAT", "json")),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("DOCVAULT_METRICS_PATH", "/metrics"),
		},
	}

	if cfg.Storage.Backend != "disk" && cfg.Storage.Backend != "minio" {
		return Config{}, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.MaxFileSize <= 0 {
		return Config{}, fmt.Errorf("max file size must be positive, got %d", cfg.Storage.MaxFileSize)
	}
	if cfg.Render.Workers < 1 {
		cfg.Render.Workers = 1
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
