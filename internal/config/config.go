package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
)

const (
	devJWTSecret = "dev-secret-change-in-production"
	devDSN       = "root:password@tcp(127.0.0.1:3306)/messagely?parseTime=true"

	StoreMySQL  = "mysql"
	StoreMemory = "memory"

	HashBcrypt   = "bcrypt"
	HashArgon2id = "argon2id"
)

var (
	ErrProductionSecret = errors.New("JWT_SECRET must be set in production environment")
	ErrUnknownStore     = errors.New("STORE must be mysql or memory")
	ErrUnknownHash      = errors.New("PASSWORD_HASH must be bcrypt or argon2id")
	ErrWorkFactor       = errors.New("PASSWORD_WORK_FACTOR out of range")
	ErrNonPositive      = errors.New("JWT_EXPIRY and REQUEST_TIMEOUT must be positive")
)

type Config struct {
	Port           string        `env:"PORT,default=8080"`
	Env            string        `env:"ENV,default=development"`
	Store          string        `env:"STORE,default=mysql"`
	DatabaseDSN    string        `env:"DATABASE_DSN"`
	JWTSecret      string        `env:"JWT_SECRET,default=dev-secret-change-in-production"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY,default=24h"`
	HashAlgorithm  string        `env:"PASSWORD_HASH,default=bcrypt"`
	WorkFactor     int           `env:"PASSWORD_WORK_FACTOR"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
}

// Load reads the configuration from the environment and validates it.
// Callers are expected to have loaded any .env file beforehand.
func Load() (Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	// The DSN default carries '=' which the tag syntax cannot hold.
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = devDSN
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and the production secret rule.
func (c Config) Validate() error {
	if c.Env == "production" && c.JWTSecret == devJWTSecret {
		return ErrProductionSecret
	}

	switch c.Store {
	case StoreMySQL, StoreMemory:
	default:
		return ErrUnknownStore
	}

	switch c.HashAlgorithm {
	case HashBcrypt:
		if c.WorkFactor != 0 && (c.WorkFactor < 4 || c.WorkFactor > 31) {
			return fmt.Errorf("%w: bcrypt cost %d", ErrWorkFactor, c.WorkFactor)
		}
	case HashArgon2id:
		if c.WorkFactor < 0 || c.WorkFactor > 64 {
			return fmt.Errorf("%w: argon2id iterations %d", ErrWorkFactor, c.WorkFactor)
		}
	default:
		return ErrUnknownHash
	}

	if c.JWTExpiry <= 0 || c.RequestTimeout <= 0 {
		return ErrNonPositive
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
