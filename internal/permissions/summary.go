package permissions

import (
	"fmt"

	"github.com/dmitrijs2005/gatehouse/internal/models"
)

// Summary describes what u may do in one line.
func (m *Model) Summary(u models.User) string {
	if !u.IsActive {
		return "no permissions (account disabled)"
	}

	eff := m.EffectiveCapabilities(u)
	switch u.Role {
	case models.RoleAdmin:
		return "administrator: full control over all system functions and resources"
	case models.RoleGuest:
		return fmt.Sprintf("guest: restricted, read-only by default [%s] %s", eff.Flags(), eff)
	default:
		return fmt.Sprintf("%s: own home directory and public resources [%s] %s", u.Role, eff.Flags(), eff)
	}
}
