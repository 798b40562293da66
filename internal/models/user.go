// Package models defines the records owned by the identity core.
package models

import "time"

// User is an identity record. Values handed out by the directory are copies.
type User struct {
	ID            int64
	Username      string
	SecretHash    string
	Role          Role
	Overrides     Overrides
	IsActive      bool
	CreatedAt     time.Time
	LastLoginAt   time.Time
	HomeDirectory string
}

// IsActiveAdmin reports whether u counts toward the last-admin invariant.
func (u User) IsActiveAdmin() bool {
	return u.Role == RoleAdmin && u.IsActive
}

// HasLoggedIn reports whether LastLoginAt was ever stamped.
func (u User) HasLoggedIn() bool {
	return !u.LastLoginAt.IsZero()
}
