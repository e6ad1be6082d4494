package config

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "STORE", "DATABASE_DSN", "JWT_SECRET", "JWT_EXPIRY",
		"PASSWORD_HASH", "PASSWORD_WORK_FACTOR", "REQUEST_TIMEOUT", "LOG_LEVEL"} {
		unsetenv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.Store != StoreMySQL {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreMySQL)
	}
	if cfg.DatabaseDSN != devDSN {
		t.Errorf("DatabaseDSN = %q, want %q", cfg.DatabaseDSN, devDSN)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 24h", cfg.JWTExpiry)
	}
	if cfg.HashAlgorithm != HashBcrypt {
		t.Errorf("HashAlgorithm = %q, want %q", cfg.HashAlgorithm, HashBcrypt)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
	}
}

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("PASSWORD_HASH", "argon2id")
	t.Setenv("PASSWORD_WORK_FACTOR", "2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.Store != StoreMemory {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.JWTExpiry != 30*time.Minute {
		t.Errorf("JWTExpiry = %v, want 30m", cfg.JWTExpiry)
	}
	if cfg.WorkFactor != 2 {
		t.Errorf("WorkFactor = %d, want 2", cfg.WorkFactor)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Env:            "development",
		Store:          StoreMySQL,
		JWTSecret:      devJWTSecret,
		JWTExpiry:      time.Hour,
		HashAlgorithm:  HashBcrypt,
		RequestTimeout: time.Second,
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "production with dev secret", mutate: func(c *Config) { c.Env = "production" }, wantErr: ErrProductionSecret},
		{name: "production with real secret", mutate: func(c *Config) { c.Env = "production"; c.JWTSecret = "s3cr3t" }},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "redis" }, wantErr: ErrUnknownStore},
		{name: "unknown hash", mutate: func(c *Config) { c.HashAlgorithm = "md5" }, wantErr: ErrUnknownHash},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.WorkFactor = 3 }, wantErr: ErrWorkFactor},
		{name: "bcrypt cost too high", mutate: func(c *Config) { c.WorkFactor = 32 }, wantErr: ErrWorkFactor},
		{name: "zero expiry", mutate: func(c *Config) { c.JWTExpiry = 0 }, wantErr: ErrNonPositive},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: ErrNonPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
