package permissions

import (
	"testing"

	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	m := newModel(t)

	alice := models.User{ID: 10, Username: "alice", Role: models.RoleStandard, IsActive: true, HomeDirectory: "/home/alice"}
	guest := models.User{ID: 11, Username: "visitor", Role: models.RoleGuest, IsActive: true, HomeDirectory: "/home/visitor"}
	admin := models.User{ID: 1, Username: "admin", Role: models.RoleAdmin, IsActive: true}

	acl := models.NewACL("/srv/report.txt", 20, 5)
	acl.Others = models.AccessNone

	tests := []struct {
		name string
		req  ResourceRequest
		want bool
	}{
		{"admin reads system path", ResourceRequest{User: admin, Path: "/system/kernel", Access: models.AccessFull}, true},
		{"standard denied system path", ResourceRequest{User: alice, Path: "0:/System/kernel", Access: models.AccessRead}, false},
		{"standard full in home", ResourceRequest{User: alice, Path: "/home/alice/notes", Access: models.AccessFull}, true},
		{"guest reads home", ResourceRequest{User: guest, Path: "/home/visitor/a", Access: models.AccessRead}, true},
		{"guest cannot write home", ResourceRequest{User: guest, Path: "/home/visitor/a", Access: models.AccessWrite}, false},
		{"guest reads public", ResourceRequest{User: guest, Path: "/public/readme", Access: models.AccessRead}, true},
		{"guest cannot write public", ResourceRequest{User: guest, Path: "/public/readme", Access: models.AccessWrite}, false},
		{"standard writes public", ResourceRequest{User: alice, Path: "/public/readme", Access: models.AccessWrite}, true},
		{"standard cannot delete elsewhere", ResourceRequest{User: alice, Path: "/srv/x", Access: models.AccessDelete}, false},
		{"owner tier", ResourceRequest{User: models.User{ID: 20, Role: models.RoleGuest, IsActive: true}, ACL: &acl, Path: acl.Path, Access: models.AccessDelete}, true},
		{"group tier", ResourceRequest{User: alice, GroupIDs: []int64{5}, ACL: &acl, Path: acl.Path, Access: models.AccessWrite}, true},
		{"group tier lacks execute", ResourceRequest{User: alice, GroupIDs: []int64{5}, ACL: &acl, Path: acl.Path, Access: models.AccessExecute}, false},
		{"others tier", ResourceRequest{User: alice, ACL: &acl, Path: acl.Path, Access: models.AccessRead}, false},
		{"admin bypasses acl", ResourceRequest{User: admin, ACL: &acl, Path: acl.Path, Access: models.AccessFull}, true},
		{"inactive denied", ResourceRequest{User: models.User{ID: 20, IsActive: false}, ACL: &acl, Path: acl.Path, Access: models.AccessRead}, false},
		{"empty path denied", ResourceRequest{User: alice, Access: models.AccessRead}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.CanAccess(tc.req))
		})
	}
}

func TestCanAccess_GrantedSystemAdminBypasses(t *testing.T) {
	m := newModel(t)
	u := models.User{ID: 3, Role: models.RoleStandard, IsActive: true}
	u.Overrides = u.Overrides.Grant(models.CapSystemAdmin)

	assert.True(t, m.CanAccess(ResourceRequest{User: u, Path: "/boot/loader", Access: models.AccessWrite}))
}

func TestRequiredCapabilities(t *testing.T) {
	assert.Equal(t, models.NewCapabilitySet(models.CapRead, models.CapWrite), RequiredCapabilities(models.AccessReadWrite))
	assert.Equal(t, models.CapabilitySet(0), RequiredCapabilities(models.AccessNone))
}

func TestTier(t *testing.T) {
	acl := models.NewACL("/x", 1, 2)
	assert.Equal(t, models.AccessFull, Tier(acl, 1, nil))
	assert.Equal(t, models.AccessReadWrite, Tier(acl, 9, []int64{2}))
	assert.Equal(t, models.AccessRead, Tier(acl, 9, []int64{3}))
}
