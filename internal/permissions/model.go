// Package permissions answers authorization questions for users of the
// directory: role defaults, per-user overrides and resource-scoped access.
// Every decision is a pure function of the user snapshot it is given.
package permissions

import (
	_ "embed"
	"fmt"
	"maps"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/dmitrijs2005/gatehouse/internal/models"
)

//go:embed model.conf
var casbinModelContent string

//go:embed policy.csv
var rolePolicy string

// Model holds the role default table. It is immutable after construction
// and safe for concurrent use.
type Model struct {
	defaults map[models.Role]models.CapabilitySet
}

// NewModel evaluates the embedded role policy.
func NewModel() (*Model, error) {
	return NewModelFromPolicy(rolePolicy)
}

// NewModelFromPolicy builds the role default table from a casbin policy in
// CSV form: "p, <role>, <capability>" lines grant a capability and
// "g, <role>, <parent>" lines inherit everything the parent role has.
func NewModelFromPolicy(policy string) (*Model, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, stringadapter.NewAdapter(policy))
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	defaults := make(map[models.Role]models.CapabilitySet, len(models.Roles()))
	for _, role := range models.Roles() {
		var set models.CapabilitySet
		for _, c := range models.Capabilities() {
			ok, err := enforcer.Enforce(role.String(), c.String())
			if err != nil {
				return nil, fmt.Errorf("evaluate %s/%s: %w", role, c, err)
			}
			if ok {
				set = set.With(c)
			}
		}
		defaults[role] = set
	}

	return &Model{defaults: defaults}, nil
}

// DefaultCapabilities returns the baseline set implied by role.
func (m *Model) DefaultCapabilities(role models.Role) models.CapabilitySet {
	return m.defaults[role]
}

// RoleDefaults returns a copy of the full role table.
func (m *Model) RoleDefaults() map[models.Role]models.CapabilitySet {
	return maps.Clone(m.defaults)
}

// EffectiveCapabilities is the role default with the user's grants added
// and revokes removed.
func (m *Model) EffectiveCapabilities(u models.User) models.CapabilitySet {
	return u.Overrides.Apply(m.DefaultCapabilities(u.Role))
}

// HasCapability is false for inactive users, true for active admins and
// otherwise a membership test on the effective set.
func (m *Model) HasCapability(u models.User, c models.Capability) bool {
	if !u.IsActive {
		return false
	}
	if u.Role == models.RoleAdmin {
		return true
	}
	return m.EffectiveCapabilities(u).Has(c)
}
