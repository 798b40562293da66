package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/logging"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultMaxLoginAttempts = 3
	DefaultLockoutDuration  = 30 * time.Second
	DefaultIdleTimeout      = 30 * time.Minute
)

// Session is the login state machine for one interactive principal. It
// holds its own lock and takes it before the directory's, never after.
//
// Lockout bookkeeping is independent of the logged-in state: failed
// attempts accumulate across usernames until a login succeeds or the
// lockout window expires.
type Session struct {
	mu sync.Mutex

	dir   *Directory
	audit Recorder
	log   logging.Logger
	now   func() time.Time

	maxAttempts     int
	lockoutDuration time.Duration

	id             string
	userID         int64
	username       string
	loggedIn       bool
	loginAt        time.Time
	lastActivityAt time.Time

	failedAttempts int
	lockedUntil    time.Time
}

type SessionOption func(*Session)

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithLockout sets the failure threshold and the lockout window.
func WithLockout(maxAttempts int, d time.Duration) SessionOption {
	return func(s *Session) {
		s.maxAttempts = maxAttempts
		s.lockoutDuration = d
	}
}

func NewSession(dir *Directory, audit Recorder, opts ...SessionOption) *Session {
	s := &Session{
		dir:             dir,
		audit:           audit,
		log:             logging.Discard(),
		now:             time.Now,
		maxAttempts:     DefaultMaxLoginAttempts,
		lockoutDuration: DefaultLockoutDuration,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SessionInfo is a snapshot of the session state.
type SessionInfo struct {
	ID             string
	LoggedIn       bool
	UserID         int64
	Username       string
	Role           models.Role
	LoginAt        time.Time
	LastActivityAt time.Time
	FailedAttempts int
	LockedUntil    time.Time
}

// Login authenticates username and makes it the current principal. While
// a lockout is active the attempt fails with *common.AccountLockedError and
// is not counted. A successful login while another principal is signed in
// logs that principal out first.
func (s *Session) Login(ctx context.Context, username, secret string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Before(s.lockedUntil) {
		err := common.NewAccountLockedError(s.lockedUntil.Sub(now))
		s.audit.Record(username, models.ActionLogin, fmt.Sprintf("login refused: %v", err), false)
		s.log.Warn(ctx, "login while locked", "username", username)
		return models.User{}, err
	}
	if !s.lockedUntil.IsZero() {
		s.failedAttempts = 0
		s.lockedUntil = time.Time{}
	}

	u, err := s.dir.Authenticate(ctx, username, secret)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			s.failedAttempts++
			if s.failedAttempts >= s.maxAttempts {
				s.lockedUntil = now.Add(s.lockoutDuration)
				s.log.Warn(ctx, "login locked out", "username", username, "attempts", s.failedAttempts)
			}
		}
		s.audit.Record(username, models.ActionLogin, fmt.Sprintf("login failed: %v", err), false)
		s.log.Warn(ctx, "login failed", "username", username, "error", err)
		return models.User{}, err
	}

	if _, _, err := s.current(ctx); err == nil {
		s.logoutLocked(ctx, models.ActionLogout, "replaced by new login")
	}

	s.id = uuid.NewString()
	s.userID = u.ID
	s.username = u.Username
	s.loggedIn = true
	s.loginAt = now
	s.lastActivityAt = now
	s.failedAttempts = 0
	s.lockedUntil = time.Time{}

	s.audit.Record(u.Username, models.ActionLogin, "login succeeded", true)
	s.log.Info(ctx, "login", "username", u.Username, "user_id", u.ID, "session_id", s.id)
	return u, nil
}

// Logout ends the session. It is a no-op when nobody is logged in.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := s.current(ctx); err == nil {
		s.logoutLocked(ctx, models.ActionLogout, "logged out")
	}
}

func (s *Session) logoutLocked(ctx context.Context, action models.AuditAction, detail string) {
	s.audit.Record(s.username, action, detail, true)
	s.log.Info(ctx, "logout", "username", s.username, "user_id", s.userID, "session_id", s.id, "reason", detail)
	s.clearLocked()
}

func (s *Session) clearLocked() {
	s.id = ""
	s.userID = 0
	s.username = ""
	s.loggedIn = false
	s.loginAt = time.Time{}
	s.lastActivityAt = time.Time{}
}

// CheckIdleTimeout logs the principal out when it has been idle for at
// least maxIdle and reports whether that happened.
func (s *Session) CheckIdleTimeout(ctx context.Context, maxIdle time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := s.current(ctx); err != nil {
		return false
	}
	idle := s.now().Sub(s.lastActivityAt)
	if idle < maxIdle {
		return false
	}
	s.logoutLocked(ctx, models.ActionSessionTimeout, fmt.Sprintf("idle for %s", idle.Truncate(time.Second)))
	return true
}

// Touch records activity while logged in.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loggedIn {
		s.lastActivityAt = s.now()
	}
}

// RequireAuthenticated returns the current principal as an actor. It
// fails with ErrNotAuthenticated when nobody is logged in or the account
// no longer exists.
func (s *Session) RequireAuthenticated(ctx context.Context) (Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, actor, err := s.current(ctx)
	return actor, err
}

// RequireCapability is RequireAuthenticated plus a capability check.
// Refusals are audited.
func (s *Session) RequireCapability(ctx context.Context, c models.Capability) (Actor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, actor, err := s.current(ctx)
	if err != nil {
		return Actor{}, err
	}
	if !s.dir.Permissions().HasCapability(u, c) {
		s.audit.Record(u.Username, models.ActionAccessDenied, fmt.Sprintf("requires %s", c), false)
		s.log.Warn(ctx, "capability check failed", "username", u.Username, "capability", c.String())
		return Actor{}, fmt.Errorf("%s requires %s: %w", u.Username, c, common.ErrForbidden)
	}
	return actor, nil
}

// current resolves the signed-in principal. A deleted account drops the
// session silently; a disabled one is logged out.
func (s *Session) current(ctx context.Context) (models.User, Actor, error) {
	if !s.loggedIn {
		return models.User{}, Actor{}, common.ErrNotAuthenticated
	}
	u, ok := s.dir.FindByID(ctx, s.userID)
	if !ok {
		s.log.Info(ctx, "session dropped, account deleted", "username", s.username, "user_id", s.userID, "session_id", s.id)
		s.clearLocked()
		return models.User{}, Actor{}, common.ErrNotAuthenticated
	}
	if !u.IsActive {
		s.logoutLocked(ctx, models.ActionLogout, "account disabled")
		return models.User{}, Actor{}, fmt.Errorf("%s: %w: %w", u.Username, common.ErrAccountDisabled, common.ErrNotAuthenticated)
	}
	return u, ActorFor(u), nil
}

// CurrentUser returns a fresh copy of the logged-in user's record.
func (s *Session) CurrentUser(ctx context.Context) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, _, err := s.current(ctx)
	return u, err == nil
}

// IsLoggedIn reports whether a principal is signed in and its account is
// still usable.
func (s *Session) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, err := s.current(context.Background())
	return err == nil
}

// RemainingAttempts is how many failures are left before lockout.
func (s *Session) RemainingAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return max(0, s.maxAttempts-s.failedAttempts)
}

// LockedFor returns the time left in the lockout window, zero when none.
func (s *Session) LockedFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d := s.lockedUntil.Sub(s.now()); d > 0 {
		return d
	}
	return 0
}

func (s *Session) Info(ctx context.Context) SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, _, err := s.current(ctx)

	info := SessionInfo{
		ID:             s.id,
		LoggedIn:       s.loggedIn,
		UserID:         s.userID,
		Username:       s.username,
		LoginAt:        s.loginAt,
		LastActivityAt: s.lastActivityAt,
		FailedAttempts: s.failedAttempts,
		LockedUntil:    s.lockedUntil,
	}
	if err == nil {
		info.Role = u.Role
	}
	return info
}
