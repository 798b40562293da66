package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/gatehouse/internal/flagx"
	"github.com/dmitrijs2005/gatehouse/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of a config file. Pointer fields
// distinguish "absent" from zero so a file may override only some keys.
type FileConfig struct {
	MinSecretLength     *int            `json:"min_secret_length" yaml:"min_secret_length"`
	MaxLoginAttempts    *int            `json:"max_login_attempts" yaml:"max_login_attempts"`
	LockoutDuration     *timex.Duration `json:"lockout_duration" yaml:"lockout_duration"`
	IdleTimeout         *timex.Duration `json:"idle_timeout" yaml:"idle_timeout"`
	AuditCapacity       *int            `json:"audit_capacity" yaml:"audit_capacity"`
	AuditQueryCacheSize *int            `json:"audit_query_cache_size" yaml:"audit_query_cache_size"`
	BootstrapUsername   *string         `json:"bootstrap_username" yaml:"bootstrap_username"`
	BootstrapSecret     *string         `json:"bootstrap_secret" yaml:"bootstrap_secret"`
	HomeRoot            *string         `json:"home_root" yaml:"home_root"`
	HashTime            *uint32         `json:"hash_time" yaml:"hash_time"`
	HashMemoryKiB       *uint32         `json:"hash_memory_kib" yaml:"hash_memory_kib"`
	HashThreads         *uint8          `json:"hash_threads" yaml:"hash_threads"`
	HashKeyLen          *uint32         `json:"hash_key_len" yaml:"hash_key_len"`
	LogLevel            *string         `json:"log_level" yaml:"log_level"`
	LogFormat           *string         `json:"log_format" yaml:"log_format"`
}

// parseFile overlays the file named by -c/-config, if any. Files ending in
// .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (fc *FileConfig) apply(cfg *Config) {
	set(&cfg.MinSecretLength, fc.MinSecretLength)
	set(&cfg.MaxLoginAttempts, fc.MaxLoginAttempts)
	if fc.LockoutDuration != nil {
		cfg.LockoutDuration = fc.LockoutDuration.Duration
	}
	if fc.IdleTimeout != nil {
		cfg.IdleTimeout = fc.IdleTimeout.Duration
	}
	set(&cfg.AuditCapacity, fc.AuditCapacity)
	set(&cfg.AuditQueryCacheSize, fc.AuditQueryCacheSize)
	set(&cfg.BootstrapUsername, fc.BootstrapUsername)
	set(&cfg.BootstrapSecret, fc.BootstrapSecret)
	set(&cfg.HomeRoot, fc.HomeRoot)
	set(&cfg.HashTime, fc.HashTime)
	set(&cfg.HashMemoryKiB, fc.HashMemoryKiB)
	set(&cfg.HashThreads, fc.HashThreads)
	set(&cfg.HashKeyLen, fc.HashKeyLen)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
}
