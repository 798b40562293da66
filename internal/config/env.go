package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// parseEnv overlays GATEHOUSE_* variables. Unset variables leave the
// current value in place.
func parseEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
