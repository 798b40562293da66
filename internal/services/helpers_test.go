package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatehouse/internal/audit"
	"github.com/dmitrijs2005/gatehouse/internal/cryptox"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/permissions"
	"github.com/dmitrijs2005/gatehouse/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type env struct {
	ctx   context.Context
	clock *fakeClock
	log   *audit.Log
	dir   *Directory
	sess  *Session
}

func cheapHasher() *cryptox.Hasher {
	return cryptox.NewHasher(cryptox.Params{Time: 1, MemoryKiB: 64, Threads: 1, KeyLen: 32})
}

func newEnv(t *testing.T) *env {
	t.Helper()

	clock := newFakeClock()
	log := audit.New(100, audit.WithClock(clock.Now))

	perms, err := permissions.NewModel()
	require.NoError(t, err)

	dir, err := NewDirectory(repomanager.NewInMemoryRepositoryManager(), cheapHasher(), perms, log,
		WithDirectoryClock(clock.Now))
	require.NoError(t, err)

	sess := NewSession(dir, log, WithSessionClock(clock.Now))

	return &env{ctx: context.Background(), clock: clock, log: log, dir: dir, sess: sess}
}

func (e *env) create(t *testing.T, name, secret string, role models.Role) int64 {
	t.Helper()
	id, err := e.dir.CreateUser(e.ctx, SystemActor(), name, secret, role)
	require.NoError(t, err)
	return id
}

func (e *env) actor(t *testing.T, id int64) Actor {
	t.Helper()
	u, ok := e.dir.FindByID(e.ctx, id)
	require.True(t, ok)
	return ActorFor(u)
}

func (e *env) last() models.AuditEntry {
	entries := e.log.Recent(1)
	if len(entries) == 0 {
		return models.AuditEntry{}
	}
	return entries[0]
}
