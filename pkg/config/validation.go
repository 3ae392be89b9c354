package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Struct tag validation covers
// per-field constraints; cross-field rules live in Validate below.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for errors.
//
// Field-level constraints come from `validate` struct tags. Rules that span
// multiple fields (a backend selected but not configured, auth enabled
// without a secret) are checked explicitly.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("invalid configuration structure: %w", err)
		}

		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, formatFieldError(fe))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}

	if err := validateStore(&cfg.Store); err != nil {
		return err
	}
	if err := validateBlob(&cfg.Blob); err != nil {
		return err
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}
	if err := validateAPI(cfg); err != nil {
		return err
	}
	if err := validateUsers(cfg); err != nil {
		return err
	}

	return nil
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Namespace())
	field = strings.TrimPrefix(field, "config.")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func validateStore(cfg *StoreConfig) error {
	switch cfg.Type {
	case StoreTypeMemory:
		// No settings.
	case StoreTypeBadger:
		if cfg.Badger.Path == "" {
			return fmt.Errorf("store.badger.path is required for the badger store")
		}
	case StoreTypeSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite store")
		}
	case StoreTypePostgres:
		if cfg.Postgres.Host == "" {
			return fmt.Errorf("store.postgres.host is required for the postgres store")
		}
		if cfg.Postgres.Database == "" {
			return fmt.Errorf("store.postgres.database is required for the postgres store")
		}
		if cfg.Postgres.User == "" {
			return fmt.Errorf("store.postgres.user is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
	return nil
}

func validateBlob(cfg *BlobConfig) error {
	switch cfg.Type {
	case BlobTypeFilesystem:
		if cfg.Filesystem.Path == "" {
			return fmt.Errorf("blob.filesystem.path is required for the filesystem blob store")
		}
	case BlobTypeS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket is required for the s3 blob store")
		}
		if cfg.S3.Region == "" {
			return fmt.Errorf("blob.s3.region is required for the s3 blob store")
		}
	default:
		return fmt.Errorf("unsupported blob store type: %s", cfg.Type)
	}
	if cfg.PresignTTL <= 0 {
		return fmt.Errorf("blob.presign_ttl must be positive")
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) error {
	if cfg.Enabled && cfg.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Profiling.Enabled && cfg.Profiling.Endpoint == "" {
		return fmt.Errorf("telemetry.profiling.endpoint is required when profiling is enabled")
	}
	return nil
}

func validateAPI(cfg *Config) error {
	if !cfg.API.IsEnabled() {
		return nil
	}
	if err := cfg.API.JWT.Validate(); err != nil {
		return fmt.Errorf("api.jwt: %w", err)
	}
	return nil
}

func validateUsers(cfg *Config) error {
	if !cfg.API.IsEnabled() {
		return nil
	}
	if len(cfg.Users) == 0 {
		return fmt.Errorf("at least one user is required when the API is enabled")
	}

	seen := make(map[string]bool)
	owners := make(map[int64]string)
	for i := range cfg.Users {
		u := &cfg.Users[i]
		if err := u.Validate(); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if seen[u.Username] {
			return fmt.Errorf("duplicate username: %q", u.Username)
		}
		if other, taken := owners[u.OwnerID]; taken {
			return fmt.Errorf("users %q and %q share owner_id %d", other, u.Username, u.OwnerID)
		}
		seen[u.Username] = true
		owners[u.OwnerID] = u.Username
	}
	return nil
}
