package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cabinetfs/cabinet/internal/bytesize"
	"github.com/cabinetfs/cabinet/pkg/api"
	sqlstore "github.com/cabinetfs/cabinet/pkg/vfs/store/sql"
)

// Default values for configuration.
const (
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "text"
	DefaultLogOutput = "stdout"

	DefaultTelemetryEndpoint  = "localhost:4317"
	DefaultTelemetrySampling  = 1.0
	DefaultProfilingEndpoint  = "http://localhost:4040"

	DefaultShutdownTimeout = 30 * time.Second

	DefaultAPIPort         = 8080
	DefaultAPIReadTimeout  = 10 * time.Second
	DefaultAPIWriteTimeout = 10 * time.Second
	DefaultAPIIdleTimeout  = 60 * time.Second

	DefaultMetricsPort = 9090

	DefaultSessionTTL           = 10 * time.Minute
	DefaultSessionSweepInterval = time.Minute

	DefaultPresignTTL = 15 * time.Minute
)

// DefaultAPIMaxBodySize is the default request body limit (1 MiB). Requests
// carry metadata only, never file content.
var DefaultAPIMaxBodySize = bytesize.ByteSize(1 * bytesize.MiB)

// ApplyDefaults fills in default values for any missing configuration.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	applyStoreDefaults(&cfg.Store)
	applyBlobDefaults(&cfg.Blob)
	applyAPIDefaults(&cfg.API)
	applyMetricsDefaults(&cfg.Metrics)
	applySessionDefaults(&cfg.Session)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = DefaultLogLevel
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = DefaultLogFormat
	}
	if cfg.Output == "" {
		cfg.Output = DefaultLogOutput
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultTelemetryEndpoint
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultTelemetrySampling
	}
	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = DefaultProfilingEndpoint
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_objects", "inuse_space", "goroutines"}
	}
}

func applyStoreDefaults(cfg *StoreConfig) {
	if cfg.Type == "" {
		cfg.Type = StoreTypeSQLite
	}

	switch cfg.Type {
	case StoreTypeBadger:
		if cfg.Badger.Path == "" {
			cfg.Badger.Path = filepath.Join(getDataDir(), "metadata")
		}
	case StoreTypeSQLite:
		if cfg.SQLite.Path == "" {
			cfg.SQLite.Path = filepath.Join(getDataDir(), "cabinet.db")
		}
	case StoreTypePostgres:
		if cfg.Postgres.Port == 0 {
			cfg.Postgres.Port = 5432
		}
		if cfg.Postgres.SSLMode == "" {
			cfg.Postgres.SSLMode = "disable"
		}
		if cfg.Postgres.MaxOpenConns == 0 {
			cfg.Postgres.MaxOpenConns = 25
		}
		if cfg.Postgres.MaxIdleConns == 0 {
			cfg.Postgres.MaxIdleConns = 5
		}
	}
}

func applyBlobDefaults(cfg *BlobConfig) {
	if cfg.Type == "" {
		cfg.Type = BlobTypeFilesystem
	}
	if cfg.Type == BlobTypeFilesystem && cfg.Filesystem.Path == "" {
		cfg.Filesystem.Path = filepath.Join(getDataDir(), "blobs")
	}
	if cfg.Type == BlobTypeS3 && cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.PresignTTL == 0 {
		cfg.PresignTTL = DefaultPresignTTL
	}
}

func applyAPIDefaults(cfg *api.APIConfig) {
	if cfg.Enabled == nil {
		enabled := true
		cfg.Enabled = &enabled
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultAPIPort
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultAPIReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultAPIWriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultAPIIdleTimeout
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = DefaultAPIMaxBodySize
	}
	cfg.JWT.ApplyDefaults()
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = DefaultMetricsPort
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = DefaultSessionSweepInterval
	}
}

// GetDefaultConfig returns a configuration with all default values applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Store: StoreConfig{
			Type:   StoreTypeSQLite,
			SQLite: sqlstore.SQLiteConfig{},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
