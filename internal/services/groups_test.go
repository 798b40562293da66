package services

import (
	"testing"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupNames(gs []models.Group) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Name)
	}
	return out
}

func TestDefaultGroupsSeeded(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, []string{"Administrators", "Users", "Guests"}, groupNames(e.dir.ListGroups(e.ctx)))

	root := e.create(t, "root", "admin", models.RoleAdmin)
	g, ok := e.dir.FindGroup(e.ctx, "administrators")
	require.True(t, ok)
	assert.Equal(t, []int64{root}, g.Members)
}

func TestGroupLifecycle(t *testing.T) {
	e := newEnv(t)
	root := e.create(t, "root", "admin", models.RoleAdmin)
	alice := e.create(t, "alice", "s3cret", models.RoleStandard)
	admin := e.actor(t, root)

	id, err := e.dir.CreateGroup(e.ctx, admin, "devs")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, models.ActionGroupCreate, e.last().Action)

	_, err = e.dir.CreateGroup(e.ctx, admin, "DEVS")
	require.ErrorIs(t, err, common.ErrInvalidArgument)
	_, err = e.dir.CreateGroup(e.ctx, e.actor(t, alice), "ops")
	require.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, e.dir.AddToGroup(e.ctx, admin, id, alice))
	require.NoError(t, e.dir.AddToGroup(e.ctx, admin, id, alice), "adding twice is harmless")
	assert.Equal(t, []string{"Users", "devs"}, groupNames(e.dir.GroupsOf(e.ctx, alice)))

	entry := e.last()
	assert.Equal(t, models.ActionGroupMemberAdd, entry.Action)
	assert.Equal(t, "group devs user alice", entry.Detail)

	require.ErrorIs(t, e.dir.AddToGroup(e.ctx, admin, id, 99), common.ErrNotFound)
	require.ErrorIs(t, e.dir.AddToGroup(e.ctx, admin, 99, alice), common.ErrNotFound)

	require.NoError(t, e.dir.RemoveFromGroup(e.ctx, admin, id, alice))
	require.ErrorIs(t, e.dir.RemoveFromGroup(e.ctx, admin, id, alice), common.ErrNotFound)
	assert.Equal(t, models.ActionGroupMemberRemove, e.last().Action)

	require.NoError(t, e.dir.DeleteGroup(e.ctx, admin, id))
	_, ok := e.dir.FindGroup(e.ctx, "devs")
	assert.False(t, ok)
}

func TestDeleteGroup_DefaultsProtected(t *testing.T) {
	e := newEnv(t)

	for _, id := range []int64{models.GroupAdministrators, models.GroupUsers, models.GroupGuests} {
		require.ErrorIs(t, e.dir.DeleteGroup(e.ctx, SystemActor(), id), common.ErrForbidden)
	}
	require.ErrorIs(t, e.dir.DeleteGroup(e.ctx, SystemActor(), 50), common.ErrNotFound)
	assert.Len(t, e.dir.ListGroups(e.ctx), 3)
}
