package config

import (
	"strings"
	"testing"

	"github.com/cabinetfs/cabinet/pkg/identity"
)

func validTestConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.Store.Type = StoreTypeMemory
	cfg.API.JWT.Secret = testJWTSecret
	cfg.Users = []identity.User{
		{Username: "alice", PasswordHash: "$2a$10$abcdefghijklmnopqrstuv", OwnerID: 1, Enabled: true},
	}
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validTestConfig()); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Level = "VERBOSE"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("Expected error to name logging.level, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for invalid log format")
	}
}

func TestValidate_BadgerWithoutPath(t *testing.T) {
	cfg := validTestConfig()
	cfg.Store.Type = StoreTypeBadger
	cfg.Store.Badger.Path = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for badger store without path")
	}
}

func TestValidate_PostgresWithoutHost(t *testing.T) {
	cfg := validTestConfig()
	cfg.Store.Type = StoreTypePostgres

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for postgres store without host")
	}
}

func TestValidate_S3WithoutBucket(t *testing.T) {
	cfg := validTestConfig()
	cfg.Blob.Type = BlobTypeS3
	cfg.Blob.S3.Region = "us-east-1"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for s3 blob store without bucket")
	}
}

func TestValidate_ShortJWTSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.API.JWT.Secret = "too-short"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for short JWT secret")
	}
}

func TestValidate_APIEnabledWithoutUsers(t *testing.T) {
	cfg := validTestConfig()
	cfg.Users = nil

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for enabled API without users")
	}
}

func TestValidate_APIDisabledSkipsUserChecks(t *testing.T) {
	cfg := validTestConfig()
	disabled := false
	cfg.API.Enabled = &disabled
	cfg.API.JWT.Secret = ""
	cfg.Users = nil

	if err := Validate(cfg); err != nil {
		t.Errorf("Expected valid config with API disabled, got: %v", err)
	}
}

func TestValidate_DuplicateUsernames(t *testing.T) {
	cfg := validTestConfig()
	cfg.Users = append(cfg.Users, identity.User{
		Username: "alice", PasswordHash: "$2a$10$abcdefghijklmnopqrstuv", OwnerID: 2, Enabled: true,
	})

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for duplicate usernames")
	}
}

func TestValidate_SharedOwnerID(t *testing.T) {
	cfg := validTestConfig()
	cfg.Users = append(cfg.Users, identity.User{
		Username: "bob", PasswordHash: "$2a$10$abcdefghijklmnopqrstuv", OwnerID: 1, Enabled: true,
	})

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for shared owner_id")
	}
}

func TestValidate_TelemetryEnabledWithoutEndpoint(t *testing.T) {
	cfg := validTestConfig()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Endpoint = ""

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for telemetry without endpoint")
	}
}

func TestValidate_SampleRateOutOfRange(t *testing.T) {
	cfg := validTestConfig()
	cfg.Telemetry.SampleRate = 1.5

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected error for sample rate > 1")
	}
}
