package models

import (
	"fmt"
	"strings"
)

// Capability is a single named permission bit.
type Capability uint16

const (
	CapRead Capability = 1 << iota
	CapWrite
	CapExecute
	CapDelete
	CapCreateUser
	CapDeleteUser
	CapModifyPermissions
	CapSystemAdmin
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapRead, "read"},
	{CapWrite, "write"},
	{CapExecute, "execute"},
	{CapDelete, "delete"},
	{CapCreateUser, "createUser"},
	{CapDeleteUser, "deleteUser"},
	{CapModifyPermissions, "modifyPermissions"},
	{CapSystemAdmin, "systemAdmin"},
}

// Capabilities lists every capability in bit order.
func Capabilities() []Capability {
	out := make([]Capability, 0, len(capabilityNames))
	for _, cn := range capabilityNames {
		out = append(out, cn.c)
	}
	return out
}

func (c Capability) String() string {
	for _, cn := range capabilityNames {
		if cn.c == c {
			return cn.name
		}
	}
	return fmt.Sprintf("capability(%d)", uint16(c))
}

// ParseCapability matches capability names case-insensitively.
func ParseCapability(s string) (Capability, error) {
	s = strings.TrimSpace(s)
	for _, cn := range capabilityNames {
		if strings.EqualFold(cn.name, s) {
			return cn.c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", s)
}

// CapabilitySet is a bitmask of capabilities.
type CapabilitySet uint16

// NewCapabilitySet builds a set from individual capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

// AllCapabilities is the full set.
func AllCapabilities() CapabilitySet {
	return NewCapabilitySet(Capabilities()...)
}

func (s CapabilitySet) Has(c Capability) bool {
	return c != 0 && s&CapabilitySet(c) == CapabilitySet(c)
}

func (s CapabilitySet) With(c Capability) CapabilitySet {
	return s | CapabilitySet(c)
}

func (s CapabilitySet) Without(c Capability) CapabilitySet {
	return s &^ CapabilitySet(c)
}

func (s CapabilitySet) Union(o CapabilitySet) CapabilitySet {
	return s | o
}

func (s CapabilitySet) Minus(o CapabilitySet) CapabilitySet {
	return s &^ o
}

// List returns the members in bit order.
func (s CapabilitySet) List() []Capability {
	var out []Capability
	for _, c := range Capabilities() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String renders the set as a comma separated list of names.
func (s CapabilitySet) String() string {
	if s == 0 {
		return "none"
	}
	names := make([]string, 0, 8)
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}

// Flags renders one character per capability in bit order, "-" when absent:
// r w x d c u m s.
func (s CapabilitySet) Flags() string {
	const letters = "rwxdcums"
	var b strings.Builder
	for i, c := range Capabilities() {
		if s.Has(c) {
			b.WriteByte(letters[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Overrides are explicit per-user grants and revokes layered over the role
// default. A capability is never in both sets.
type Overrides struct {
	Granted CapabilitySet
	Revoked CapabilitySet
}

// Grant adds c to the granted set and drops any revoke of it.
func (o Overrides) Grant(c Capability) Overrides {
	return Overrides{Granted: o.Granted.With(c), Revoked: o.Revoked.Without(c)}
}

// Revoke adds c to the revoked set and drops any grant of it.
func (o Overrides) Revoke(c Capability) Overrides {
	return Overrides{Granted: o.Granted.Without(c), Revoked: o.Revoked.With(c)}
}

// Apply layers the overrides over base.
func (o Overrides) Apply(base CapabilitySet) CapabilitySet {
	return base.Union(o.Granted).Minus(o.Revoked)
}
