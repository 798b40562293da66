package models

import (
	"fmt"
	"strings"
)

// Role is ordered by increasing default privilege.
type Role int

const (
	RoleGuest Role = iota
	RoleStandard
	RolePowerUser
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleGuest:     "guest",
	RoleStandard:  "standard",
	RolePowerUser: "poweruser",
	RoleAdmin:     "admin",
}

// Roles lists every role from least to most privileged.
func Roles() []Role {
	return []Role{RoleGuest, RoleStandard, RolePowerUser, RoleAdmin}
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole accepts role names case-insensitively. "user" is an alias for
// the standard role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guest":
		return RoleGuest, nil
	case "standard", "user":
		return RoleStandard, nil
	case "poweruser", "power":
		return RolePowerUser, nil
	case "admin", "administrator":
		return RoleAdmin, nil
	}
	return RoleGuest, fmt.Errorf("unknown role %q", s)
}
