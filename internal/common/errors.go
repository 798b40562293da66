// Package common defines the error taxonomy and small helpers shared by the
// identity core and the shell. Callers should use errors.Is / errors.As to
// match these values.
package common

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// Input validation.
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrWeakSecret        = errors.New("secret too weak")
	ErrSecretMismatch    = errors.New("secret mismatch")

	// Authentication.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountLocked      = errors.New("account locked")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Authorization and directory invariants.
	ErrForbidden          = errors.New("forbidden")
	ErrLastAdminProtected = errors.New("last active admin is protected")

	// Lookups.
	ErrNotFound = errors.New("not found")
)

// AccountLockedError is returned by login attempts made while the lockout
// window is open. It matches ErrAccountLocked.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", ErrAccountLocked, e.RemainingSeconds())
}

func (e *AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// RemainingSeconds rounds the remaining lockout up to whole seconds.
func (e *AccountLockedError) RemainingSeconds() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int(math.Ceil(e.Remaining.Seconds()))
}

// NewAccountLockedError wraps the remaining lockout duration.
func NewAccountLockedError(remaining time.Duration) error {
	return &AccountLockedError{Remaining: remaining}
}
