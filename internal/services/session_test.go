package services

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginOutcome struct {
	Action  models.AuditAction
	User    string
	Success bool
}

func loginTrail(entries []models.AuditEntry) []loginOutcome {
	var out []loginOutcome
	for _, e := range entries {
		if e.Action == models.ActionLogin {
			out = append(out, loginOutcome{e.Action, e.Username, e.Success})
		}
	}
	return out
}

func TestLogin_RootScenario(t *testing.T) {
	e := newEnv(t)
	e.create(t, "root", "admin", models.RoleAdmin)
	e.clock.Advance(time.Minute)

	_, err := e.sess.Login(e.ctx, "root", "wrong1")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = e.sess.Login(e.ctx, "root", "wrong2")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, e.sess.RemainingAttempts())

	u, err := e.sess.Login(e.ctx, "root", "admin")
	require.NoError(t, err)
	assert.Equal(t, "root", u.Username)
	assert.Equal(t, e.clock.Now(), u.LastLoginAt)

	info := e.sess.Info(e.ctx)
	assert.True(t, info.LoggedIn)
	assert.Equal(t, 0, info.FailedAttempts)
	assert.Equal(t, models.RoleAdmin, info.Role)
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, 3, e.sess.RemainingAttempts())

	stored, _ := e.dir.FindByUsername(e.ctx, "root")
	assert.Equal(t, e.clock.Now(), stored.LastLoginAt)

	want := []loginOutcome{
		{models.ActionLogin, "root", false},
		{models.ActionLogin, "root", false},
		{models.ActionLogin, "root", true},
	}
	if diff := cmp.Diff(want, loginTrail(e.log.All())); diff != "" {
		t.Errorf("login trail mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin_LockoutSequence(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)

	for i := 0; i < 3; i++ {
		_, err := e.sess.Login(e.ctx, "alice", "bad")
		require.ErrorIs(t, err, common.ErrInvalidCredentials)
	}
	assert.Equal(t, 0, e.sess.RemainingAttempts())
	assert.Equal(t, 30*time.Second, e.sess.LockedFor())

	e.clock.Advance(10 * time.Second)
	_, err := e.sess.Login(e.ctx, "alice", "s3cret")
	require.ErrorIs(t, err, common.ErrAccountLocked)

	var locked *common.AccountLockedError
	require.True(t, errors.As(err, &locked))
	assert.Equal(t, 20, locked.RemainingSeconds())
	assert.Equal(t, 3, e.sess.Info(e.ctx).FailedAttempts, "attempts during lockout are not counted")
	assert.False(t, e.last().Success)

	e.clock.Advance(20 * time.Second)
	assert.Zero(t, e.sess.LockedFor())

	_, err = e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, 0, e.sess.Info(e.ctx).FailedAttempts)
	assert.True(t, e.sess.Info(e.ctx).LockedUntil.IsZero())
}

func TestLogin_ExpiredLockoutResetsCounter(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)

	for i := 0; i < 3; i++ {
		_, _ = e.sess.Login(e.ctx, "alice", "bad")
	}
	e.clock.Advance(31 * time.Second)

	_, err := e.sess.Login(e.ctx, "alice", "bad")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Equal(t, 1, e.sess.Info(e.ctx).FailedAttempts)
	assert.Equal(t, 2, e.sess.RemainingAttempts())
}

func TestLogin_UnknownUserCountsAndLooksLikeWrongSecret(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)

	_, errUnknown := e.sess.Login(e.ctx, "mallory", "s3cret")
	_, errWrong := e.sess.Login(e.ctx, "alice", "nope")

	require.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, 2, e.sess.Info(e.ctx).FailedAttempts)

	entry := e.last()
	assert.Equal(t, "alice", entry.Username)
	assert.Equal(t, models.ActionLogin, entry.Action)
	assert.False(t, entry.Success)
}

func TestLogin_DisabledNotCounted(t *testing.T) {
	e := newEnv(t)
	alice := e.create(t, "alice", "s3cret", models.RoleStandard)
	require.NoError(t, e.dir.SetActive(e.ctx, SystemActor(), alice, false))

	for i := 0; i < 5; i++ {
		_, err := e.sess.Login(e.ctx, "alice", "s3cret")
		require.ErrorIs(t, err, common.ErrAccountDisabled)
	}
	assert.Equal(t, 3, e.sess.RemainingAttempts())
	assert.False(t, e.sess.IsLoggedIn())
}

func TestLogin_ReplacesCurrentPrincipal(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)
	e.create(t, "bob", "s3cret", models.RoleStandard)

	_, err := e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)
	firstID := e.sess.Info(e.ctx).ID

	_, err = e.sess.Login(e.ctx, "bob", "s3cret")
	require.NoError(t, err)

	u, ok := e.sess.CurrentUser(e.ctx)
	require.True(t, ok)
	assert.Equal(t, "bob", u.Username)
	assert.NotEqual(t, firstID, e.sess.Info(e.ctx).ID)

	recent := e.log.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, models.ActionLogout, recent[0].Action)
	assert.Equal(t, "alice", recent[0].Username)
	assert.Equal(t, models.ActionLogin, recent[1].Action)
	assert.Equal(t, "bob", recent[1].Username)
}

func TestLogout(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)

	before := e.log.Len()
	e.sess.Logout(e.ctx)
	assert.Equal(t, before, e.log.Len(), "logout while logged out is a no-op")

	_, err := e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)

	e.sess.Logout(e.ctx)
	assert.False(t, e.sess.IsLoggedIn())
	info := e.sess.Info(e.ctx)
	assert.Zero(t, info.UserID)
	assert.True(t, info.LastActivityAt.IsZero())

	entry := e.last()
	assert.Equal(t, models.ActionLogout, entry.Action)
	assert.Equal(t, "alice", entry.Username)

	_, err = e.sess.RequireAuthenticated(e.ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestCheckIdleTimeout(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)

	assert.False(t, e.sess.CheckIdleTimeout(e.ctx, time.Minute), "logged out sessions never time out")

	_, err := e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)

	e.clock.Advance(29 * time.Minute)
	assert.False(t, e.sess.CheckIdleTimeout(e.ctx, DefaultIdleTimeout))

	e.sess.Touch()
	e.clock.Advance(29 * time.Minute)
	assert.False(t, e.sess.CheckIdleTimeout(e.ctx, DefaultIdleTimeout))

	e.clock.Advance(time.Minute)
	assert.True(t, e.sess.CheckIdleTimeout(e.ctx, DefaultIdleTimeout))
	assert.False(t, e.sess.IsLoggedIn())

	entry := e.last()
	assert.Equal(t, models.ActionSessionTimeout, entry.Action)
	assert.Equal(t, "alice", entry.Username)
	assert.True(t, entry.Success)

	assert.False(t, e.sess.CheckIdleTimeout(e.ctx, DefaultIdleTimeout))
}

func TestTouch_LoggedOutIsNoop(t *testing.T) {
	e := newEnv(t)
	e.sess.Touch()
	assert.True(t, e.sess.Info(e.ctx).LastActivityAt.IsZero())
}

func TestRequireCapability(t *testing.T) {
	e := newEnv(t)
	e.create(t, "root", "admin", models.RoleAdmin)
	alice := e.create(t, "alice", "s3cret", models.RoleStandard)

	_, err := e.sess.RequireCapability(e.ctx, models.CapRead)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)

	_, err = e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)

	actor, err := e.sess.RequireCapability(e.ctx, models.CapWrite)
	require.NoError(t, err)
	assert.Equal(t, Actor{ID: alice, Username: "alice"}, actor)

	_, err = e.sess.RequireCapability(e.ctx, models.CapCreateUser)
	require.ErrorIs(t, err, common.ErrForbidden)
	entry := e.last()
	assert.Equal(t, models.ActionAccessDenied, entry.Action)
	assert.False(t, entry.Success)

	// decisions follow the live record, not the state at login
	require.NoError(t, e.dir.Grant(e.ctx, SystemActor(), alice, models.CapCreateUser))
	_, err = e.sess.RequireCapability(e.ctx, models.CapCreateUser)
	require.NoError(t, err)
}

func TestRequireAuthenticated_DeletedUser(t *testing.T) {
	e := newEnv(t)
	e.create(t, "root", "admin", models.RoleAdmin)
	alice := e.create(t, "alice", "s3cret", models.RoleStandard)

	_, err := e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NoError(t, e.dir.DeleteUser(e.ctx, SystemActor(), alice))

	_, err = e.sess.RequireAuthenticated(e.ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestWithLockout(t *testing.T) {
	e := newEnv(t)
	e.create(t, "alice", "s3cret", models.RoleStandard)
	sess := NewSession(e.dir, e.log, WithSessionClock(e.clock.Now), WithLockout(1, time.Minute))

	_, err := sess.Login(e.ctx, "alice", "bad")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = sess.Login(e.ctx, "alice", "s3cret")
	require.ErrorIs(t, err, common.ErrAccountLocked)
	assert.Equal(t, time.Minute, sess.LockedFor())
}

func TestDisabledPrincipal_Refused(t *testing.T) {
	e := newEnv(t)
	e.create(t, "root", "admin", models.RoleAdmin)
	bob := e.create(t, "bob", "s3cret", models.RoleStandard)

	_, err := e.sess.Login(e.ctx, "bob", "s3cret")
	require.NoError(t, err)
	actor, err := e.sess.RequireAuthenticated(e.ctx)
	require.NoError(t, err)
	require.NoError(t, e.dir.SetACL(e.ctx, actor, models.NewACL("/home/bob/notes", bob, models.GroupUsers)))

	require.NoError(t, e.dir.SetActive(e.ctx, SystemActor(), bob, false))

	tests := []struct {
		name   string
		action models.AuditAction
		call   func() error
	}{
		{"change secret", models.ActionPasswordChange, func() error {
			return e.dir.ChangeSecret(e.ctx, actor, bob, "s3cret", "n3wsecret")
		}},
		{"rewrite own acl", models.ActionACLSet, func() error {
			acl := models.NewACL("/home/bob/notes", bob, models.GroupUsers)
			acl.Others = models.AccessFull
			return e.dir.SetACL(e.ctx, actor, acl)
		}},
		{"new acl in home", models.ActionACLSet, func() error {
			return e.dir.SetACL(e.ctx, actor, models.NewACL("/home/bob/other", bob, models.GroupUsers))
		}},
		{"change group", models.ActionACLGroupChange, func() error {
			return e.dir.ChangeGroup(e.ctx, actor, "/home/bob/notes", models.GroupGuests)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.call(), common.ErrAccountDisabled)
			entry := e.last()
			assert.Equal(t, tt.action, entry.Action)
			assert.Equal(t, "bob", entry.Username)
			assert.False(t, entry.Success)
		})
	}

	got, ok := e.dir.GetACL(e.ctx, "/home/bob/notes")
	require.True(t, ok)
	assert.Equal(t, models.GroupUsers, got.GroupID)
	assert.Equal(t, models.NewACL("/home/bob/notes", bob, models.GroupUsers).String(), got.String())
	assert.False(t, e.dir.CanAccess(e.ctx, actor, "/home/bob/notes", models.AccessRead))

	// the session notices on its next check and signs bob out
	_, err = e.sess.RequireAuthenticated(e.ctx)
	require.ErrorIs(t, err, common.ErrAccountDisabled)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.False(t, e.sess.IsLoggedIn())

	entry := e.last()
	assert.Equal(t, models.ActionLogout, entry.Action)
	assert.Equal(t, "account disabled", entry.Detail)
}

func TestDeletedPrincipal_DropsSession(t *testing.T) {
	e := newEnv(t)
	e.create(t, "root", "admin", models.RoleAdmin)
	alice := e.create(t, "alice", "s3cret", models.RoleStandard)

	_, err := e.sess.Login(e.ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NoError(t, e.dir.DeleteUser(e.ctx, SystemActor(), alice))
	before := e.log.Len()

	assert.False(t, e.sess.IsLoggedIn())
	info := e.sess.Info(e.ctx)
	assert.False(t, info.LoggedIn)
	assert.Zero(t, info.UserID)

	e.clock.Advance(time.Hour)
	assert.False(t, e.sess.CheckIdleTimeout(e.ctx, DefaultIdleTimeout))
	e.sess.Logout(e.ctx)

	assert.Equal(t, before, e.log.Len(), "no logout or timeout entries for a deleted account")
	assert.Equal(t, models.ActionUserDelete, e.last().Action)
}
