// Package config holds the runtime settings of the identity core and
// loads them from defaults, an optional JSON or YAML file, GATEHOUSE_*
// environment variables and command-line flags, in that order.
package config

import (
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// GATEHOUSE_MAX_LOGIN_ATTEMPTS.
const EnvPrefix = "GATEHOUSE"

// Config holds runtime settings.
//
// Fields:
//   - MinSecretLength: shortest accepted secret.
//   - MaxLoginAttempts / LockoutDuration: failed logins before lockout and
//     how long the lockout lasts.
//   - IdleTimeout: inactivity after which a session is logged out.
//   - AuditCapacity / AuditQueryCacheSize: audit ring size and number of
//     compiled audit queries kept.
//   - BootstrapUsername / BootstrapSecret: seed admin created on an empty
//     directory.
//   - HomeRoot: parent of generated home directories.
//   - Hash*: argon2id cost parameters.
//   - LogLevel / LogFormat: slog settings.
type Config struct {
	MinSecretLength     int           `envconfig:"MIN_SECRET_LENGTH" validate:"min=1,max=1024"`
	MaxLoginAttempts    int           `envconfig:"MAX_LOGIN_ATTEMPTS" validate:"min=1"`
	LockoutDuration     time.Duration `envconfig:"LOCKOUT_DURATION" validate:"gt=0"`
	IdleTimeout         time.Duration `envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	AuditCapacity       int           `envconfig:"AUDIT_CAPACITY" validate:"min=1"`
	AuditQueryCacheSize int           `envconfig:"AUDIT_QUERY_CACHE_SIZE" validate:"min=1"`
	BootstrapUsername   string        `envconfig:"BOOTSTRAP_USERNAME" validate:"required,max=64"`
	BootstrapSecret     string        `envconfig:"BOOTSTRAP_SECRET" validate:"required"`
	HomeRoot            string        `envconfig:"HOME_ROOT" validate:"required,startswith=/"`
	HashTime            uint32        `envconfig:"HASH_TIME" validate:"min=1"`
	HashMemoryKiB       uint32        `envconfig:"HASH_MEMORY_KIB" validate:"min=8"`
	HashThreads         uint8         `envconfig:"HASH_THREADS" validate:"min=1"`
	HashKeyLen          uint32        `envconfig:"HASH_KEY_LEN" validate:"min=16,max=64"`
	LogLevel            string        `envconfig:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat           string        `envconfig:"LOG_FORMAT" validate:"oneof=text json"`
}

// LoadDefaults populates c with the documented defaults. The bootstrap
// secret is well known and meant to be changed on first login.
func (c *Config) LoadDefaults() {
	c.MinSecretLength = 4
	c.MaxLoginAttempts = 3
	c.LockoutDuration = 30 * time.Second
	c.IdleTimeout = 30 * time.Minute
	c.AuditCapacity = 100
	c.AuditQueryCacheSize = 32
	c.BootstrapUsername = "admin"
	c.BootstrapSecret = "admin"
	c.HomeRoot = "/home"
	c.HashTime = 1
	c.HashMemoryKiB = 64 * 1024
	c.HashThreads = 4
	c.HashKeyLen = 32
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Default returns a Config holding only defaults.
func Default() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if utf8.RuneCountInString(c.BootstrapSecret) < c.MinSecretLength {
		return fmt.Errorf("invalid config: bootstrap secret shorter than %d characters", c.MinSecretLength)
	}
	return nil
}

// LoadConfig builds a Config from os.Args and the environment.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := Default()

	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
