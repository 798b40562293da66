package models

import "slices"

// Default group ids.
const (
	GroupAdministrators int64 = 1
	GroupUsers          int64 = 2
	GroupGuests         int64 = 3
)

// Group is a named set of user ids.
type Group struct {
	ID      int64
	Name    string
	Members []int64
}

// Clone returns a copy that shares no memory with g.
func (g Group) Clone() Group {
	g.Members = slices.Clone(g.Members)
	return g
}

// HasMember reports whether userID belongs to g.
func (g Group) HasMember(userID int64) bool {
	return slices.Contains(g.Members, userID)
}

// IsBuiltin reports whether g is one of the default groups.
func (g Group) IsBuiltin() bool {
	return g.ID == GroupAdministrators || g.ID == GroupUsers || g.ID == GroupGuests
}

// DefaultGroupFor is the group a new user with the given role joins.
func DefaultGroupFor(r Role) int64 {
	switch r {
	case RoleAdmin:
		return GroupAdministrators
	case RoleGuest:
		return GroupGuests
	default:
		return GroupUsers
	}
}
