// Package core wires the identity components together. A Core is built
// once at start-up and handed to whatever drives it; nothing in the
// identity core is global.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gatehouse/internal/audit"
	"github.com/dmitrijs2005/gatehouse/internal/config"
	"github.com/dmitrijs2005/gatehouse/internal/cryptox"
	"github.com/dmitrijs2005/gatehouse/internal/logging"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/permissions"
	"github.com/dmitrijs2005/gatehouse/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

type Core struct {
	Config    *config.Config
	Audit     *audit.Log
	Directory *services.Directory
	Session   *services.Session
	Logger    logging.Logger
}

type options struct {
	now   func() time.Time
	repos repomanager.RepositoryManager
}

type Option func(*options)

// WithClock replaces time.Now for every component.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRepositoryManager supplies the stores; the default is in-memory.
func WithRepositoryManager(m repomanager.RepositoryManager) Option {
	return func(o *options) { o.repos = m }
}

// New builds a Core from cfg and seeds the bootstrap administrator when
// the directory is empty.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*Core, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.repos == nil {
		o.repos = repomanager.NewInMemoryRepositoryManager()
	}

	perms, err := permissions.NewModel()
	if err != nil {
		return nil, fmt.Errorf("load permission model: %w", err)
	}

	log := audit.New(cfg.AuditCapacity,
		audit.WithClock(o.now),
		audit.WithQueryCacheSize(cfg.AuditQueryCacheSize))

	hasher := cryptox.NewHasher(cryptox.Params{
		Time:      cfg.HashTime,
		MemoryKiB: cfg.HashMemoryKiB,
		Threads:   cfg.HashThreads,
		KeyLen:    cfg.HashKeyLen,
	})

	dir, err := services.NewDirectory(o.repos, hasher, perms, log,
		services.WithDirectoryClock(o.now),
		services.WithDirectoryLogger(logger.With("component", "directory")),
		services.WithMinSecretLength(cfg.MinSecretLength),
		services.WithHomeRoot(cfg.HomeRoot))
	if err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	sess := services.NewSession(dir, log,
		services.WithSessionClock(o.now),
		services.WithSessionLogger(logger.With("component", "session")),
		services.WithLockout(cfg.MaxLoginAttempts, cfg.LockoutDuration))

	c := &Core{Config: cfg, Audit: log, Directory: dir, Session: sess, Logger: logger}
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Core) bootstrap(ctx context.Context) error {
	if c.Directory.Len(ctx) > 0 {
		return nil
	}
	id, err := c.Directory.CreateUser(ctx, services.SystemActor(), c.Config.BootstrapUsername, c.Config.BootstrapSecret, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	c.Logger.Warn(ctx, "seeded bootstrap administrator; change its secret", "username", c.Config.BootstrapUsername, "user_id", id)
	return nil
}

// CheckIdle applies the configured idle timeout to the session.
func (c *Core) CheckIdle(ctx context.Context) bool {
	return c.Session.CheckIdleTimeout(ctx, c.Config.IdleTimeout)
}
