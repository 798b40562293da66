package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gatehouse/internal/flagx"
)

var flagNames = []string{
	"-min-secret", "-max-attempts", "-lockout", "-idle", "-audit-capacity",
	"-admin-user", "-admin-secret", "-home-root", "-log-level", "-log-format",
}

// parseFlags overlays command-line flags:
//
//	-min-secret int        minimum secret length
//	-max-attempts int      failed logins before lockout
//	-lockout duration      lockout window, e.g. 30s
//	-idle duration         idle session timeout, e.g. 30m
//	-audit-capacity int    audit ring size
//	-admin-user string     bootstrap admin username
//	-admin-secret string   bootstrap admin secret
//	-home-root string      parent of home directories
//	-log-level string      debug, info, warn or error
//	-log-format string     text or json
//
// Only these flags are looked at; everything else in args is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("gatehouse", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&cfg.MinSecretLength, "min-secret", cfg.MinSecretLength, "minimum secret length")
	fs.IntVar(&cfg.MaxLoginAttempts, "max-attempts", cfg.MaxLoginAttempts, "failed logins before lockout")
	fs.DurationVar(&cfg.LockoutDuration, "lockout", cfg.LockoutDuration, "lockout duration")
	fs.DurationVar(&cfg.IdleTimeout, "idle", cfg.IdleTimeout, "idle session timeout")
	fs.IntVar(&cfg.AuditCapacity, "audit-capacity", cfg.AuditCapacity, "audit log capacity")
	fs.StringVar(&cfg.BootstrapUsername, "admin-user", cfg.BootstrapUsername, "bootstrap admin username")
	fs.StringVar(&cfg.BootstrapSecret, "admin-secret", cfg.BootstrapSecret, "bootstrap admin secret")
	fs.StringVar(&cfg.HomeRoot, "home-root", cfg.HomeRoot, "parent of home directories")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
