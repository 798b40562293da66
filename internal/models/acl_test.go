package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewACL_Defaults(t *testing.T) {
	a := NewACL(`\Home\Alice\Notes.TXT`, 7, GroupUsers)

	assert.Equal(t, "/home/alice/notes.txt", a.Path)
	assert.Equal(t, AccessFull, a.Owner)
	assert.Equal(t, AccessReadWrite, a.Group)
	assert.Equal(t, AccessRead, a.Others)
	assert.Equal(t, "rwxdrw--r---", a.String())
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"/":                "/",
		"0:/System/kernel": "/system/kernel",
		`0:\Boot`:          "/boot",
		"home/bob/":        "/home/bob",
		"/a/../b/./c":      "/b/c",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}

func TestPathWithin(t *testing.T) {
	assert.True(t, PathWithin("/home/alice/x", "/home/alice"))
	assert.True(t, PathWithin("/HOME/ALICE", "/home/alice"))
	assert.False(t, PathWithin("/home/alicebob", "/home/alice"))
	assert.False(t, PathWithin("", "/home"))
	assert.True(t, PathWithin("/anything", "/"))
}

func TestParseAccess(t *testing.T) {
	tests := []struct {
		in   string
		want Access
	}{
		{"r", AccessRead},
		{"rw--", AccessReadWrite},
		{"rwxd", AccessFull},
		{"full", AccessFull},
		{"readwrite", AccessReadWrite},
		{"none", AccessNone},
		{"-x-", AccessExecute},
	}
	for _, tc := range tests {
		got, err := ParseAccess(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseAccess("rwz")
	assert.Error(t, err)
}

func TestGroup_CloneIsIndependent(t *testing.T) {
	g := Group{ID: 9, Name: "ops", Members: []int64{1, 2}}
	c := g.Clone()
	c.Members[0] = 99

	assert.Equal(t, int64(1), g.Members[0])
	assert.True(t, g.HasMember(2))
	assert.False(t, g.IsBuiltin())
	assert.Equal(t, GroupGuests, DefaultGroupFor(RoleGuest))
	assert.Equal(t, GroupUsers, DefaultGroupFor(RolePowerUser))
}
