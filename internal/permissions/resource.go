package permissions

import (
	"slices"

	"github.com/dmitrijs2005/gatehouse/internal/models"
)

// SystemPaths are reserved for administrators when no ACL says otherwise.
var SystemPaths = []string{"/system", "/boot"}

// PublicPath is readable by every active user.
const PublicPath = "/public"

// ResourceRequest carries everything a resource-scoped decision needs.
type ResourceRequest struct {
	User     models.User
	GroupIDs []int64
	// ACL is the entry governing Path, nil when none is set.
	ACL    *models.ACL
	Path   string
	Access models.Access
}

// IsSystemPath reports whether p lies under one of SystemPaths.
func IsSystemPath(p string) bool {
	for _, sp := range SystemPaths {
		if models.PathWithin(p, sp) {
			return true
		}
	}
	return false
}

// RequiredCapabilities maps resource rights to the capabilities that grant
// them when no ACL or path rule applies.
func RequiredCapabilities(a models.Access) models.CapabilitySet {
	var set models.CapabilitySet
	if a.Has(models.AccessRead) {
		set = set.With(models.CapRead)
	}
	if a.Has(models.AccessWrite) {
		set = set.With(models.CapWrite)
	}
	if a.Has(models.AccessExecute) {
		set = set.With(models.CapExecute)
	}
	if a.Has(models.AccessDelete) {
		set = set.With(models.CapDelete)
	}
	return set
}

// Tier returns the rights the ACL gives u: owner tier, then group tier,
// then others.
func Tier(acl models.ACL, userID int64, groupIDs []int64) models.Access {
	switch {
	case acl.OwnerID == userID:
		return acl.Owner
	case slices.Contains(groupIDs, acl.GroupID):
		return acl.Group
	default:
		return acl.Others
	}
}

// CanAccess decides a resource-scoped request. Order: inactive users are
// denied, system administrators pass, an ACL decides by tier, then the
// system, home and public path rules, then the user's capabilities.
func (m *Model) CanAccess(req ResourceRequest) bool {
	u := req.User
	if !u.IsActive || req.Path == "" {
		return false
	}
	if m.HasCapability(u, models.CapSystemAdmin) {
		return true
	}

	if req.ACL != nil {
		return Tier(*req.ACL, u.ID, req.GroupIDs).Has(req.Access)
	}

	if IsSystemPath(req.Path) {
		return false
	}

	if u.HomeDirectory != "" && models.PathWithin(req.Path, u.HomeDirectory) {
		if u.Role == models.RoleGuest {
			return models.AccessRead.Has(req.Access)
		}
		return true
	}

	if models.PathWithin(req.Path, PublicPath) && models.AccessRead.Has(req.Access) {
		return true
	}

	want := RequiredCapabilities(req.Access)
	return want.Minus(m.EffectiveCapabilities(u)) == 0
}
