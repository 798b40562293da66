// Package audit keeps a bounded, in-memory trail of security-relevant
// events. Recording never fails; when the ring is full the oldest entry is
// evicted.
package audit

import (
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCapacity       = 100
	DefaultQueryCacheSize = 32
)

type Option func(*Log)

// WithClock overrides time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithQueryCacheSize bounds the number of compiled query expressions kept.
func WithQueryCacheSize(n int) Option {
	return func(l *Log) { l.cacheSize = n }
}

// Log is a fixed-capacity ring buffer of audit entries, safe for concurrent
// use.
type Log struct {
	mu    sync.Mutex
	ring  []models.AuditEntry
	start int
	size  int
	seq   uint64

	now       func() time.Time
	cacheSize int
	queries   *lru.Cache[string, *bexpr.Evaluator]
}

// New returns a log holding at most capacity entries. A non-positive
// capacity selects DefaultCapacity.
func New(capacity int, opts ...Option) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l := &Log{
		ring:      make([]models.AuditEntry, capacity),
		now:       time.Now,
		cacheSize: DefaultQueryCacheSize,
	}
	for _, o := range opts {
		o(l)
	}
	if l.cacheSize <= 0 {
		l.cacheSize = DefaultQueryCacheSize
	}
	// lru.New only fails for a non-positive size.
	l.queries, _ = lru.New[string, *bexpr.Evaluator](l.cacheSize)
	return l
}

// Record appends an entry. An empty username is recorded as the system
// user.
func (l *Log) Record(username string, action models.AuditAction, detail string, success bool) {
	if strings.TrimSpace(username) == "" {
		username = common.SystemUsername
	}
	ts := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e := models.AuditEntry{
		Seq:       l.seq,
		Timestamp: ts,
		Username:  username,
		Action:    action,
		Detail:    detail,
		Success:   success,
	}

	capacity := len(l.ring)
	if l.size < capacity {
		l.ring[(l.start+l.size)%capacity] = e
		l.size++
		return
	}
	l.ring[l.start] = e
	l.start = (l.start + 1) % capacity
}

// snapshot copies the entries oldest first. Callers hold l.mu.
func (l *Log) snapshot() []models.AuditEntry {
	out := make([]models.AuditEntry, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.ring[(l.start+i)%len(l.ring)]
	}
	return out
}

// All returns every retained entry, oldest first.
func (l *Log) All() []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Recent returns up to n of the newest entries, oldest first.
func (l *Log) Recent(n int) []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n <= 0 {
		return []models.AuditEntry{}
	}
	all := l.snapshot()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// ForUser returns the entries recorded for username, matched
// case-insensitively.
func (l *Log) ForUser(username string) []models.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.AuditEntry, 0)
	for _, e := range l.snapshot() {
		if strings.EqualFold(e.Username, username) {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops every entry. Sequence numbers keep increasing.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	clear(l.ring)
	l.start, l.size = 0, 0
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

func (l *Log) Capacity() int {
	return len(l.ring)
}
