package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/permissions"
)

// SetACL stores acl for its path. Changing an existing entry needs its
// owner or the modifyPermissions capability; only the latter may hand the
// entry to a different owner. A new entry may be created by holders of
// modifyPermissions, or by a user for a path inside their own home.
func (d *Directory) SetACL(ctx context.Context, actor Actor, acl models.ACL) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	acl.Path = models.NormalizePath(acl.Path)
	err := d.setACL(ctx, actor, acl)
	d.record(actor, models.ActionACLSet, fmt.Sprintf("%s %s", acl.Path, acl), err)
	if err != nil {
		d.log.Warn(ctx, "acl change refused", "path", acl.Path, "error", err)
		return err
	}
	d.log.Info(ctx, "acl set", "path", acl.Path, "acl", acl.String())
	return nil
}

func (d *Directory) setACL(ctx context.Context, actor Actor, acl models.ACL) error {
	if acl.Path == "" {
		return fmt.Errorf("empty path: %w", common.ErrInvalidArgument)
	}
	if acl.Owner|acl.Group|acl.Others > models.AccessFull {
		return fmt.Errorf("access bits: %w", common.ErrInvalidArgument)
	}
	if _, err := d.repomanager.Users().GetByID(ctx, acl.OwnerID); err != nil {
		return fmt.Errorf("owner #%d: %w", acl.OwnerID, err)
	}
	if _, err := d.repomanager.Groups().GetByID(ctx, acl.GroupID); err != nil {
		return fmt.Errorf("group #%d: %w", acl.GroupID, err)
	}

	existing, err := d.repomanager.ACLs().Get(ctx, acl.Path)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	if err := d.authorizeACL(ctx, actor, acl, existing); err != nil {
		return err
	}
	return d.repomanager.ACLs().Put(ctx, acl)
}

func (d *Directory) authorizeACL(ctx context.Context, actor Actor, acl models.ACL, existing *models.ACL) error {
	if actor.System {
		return nil
	}
	u, err := d.principal(ctx, actor)
	if err != nil {
		return err
	}
	if d.perms.HasCapability(*u, models.CapModifyPermissions) {
		return nil
	}

	switch {
	case existing != nil && existing.OwnerID == u.ID && acl.OwnerID == u.ID:
		return nil
	case existing == nil && acl.OwnerID == u.ID && models.PathWithin(acl.Path, u.HomeDirectory):
		return nil
	}
	return fmt.Errorf("acl for %s: %w", acl.Path, common.ErrForbidden)
}

// ChangeOwner hands an existing entry to ownerID. It needs the
// modifyPermissions capability.
func (d *Directory) ChangeOwner(ctx context.Context, actor Actor, p string, ownerID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p = models.NormalizePath(p)
	err := d.changeOwner(ctx, actor, p, ownerID)
	d.record(actor, models.ActionACLOwnerChange, fmt.Sprintf("%s owner #%d", p, ownerID), err)
	if err != nil {
		d.log.Warn(ctx, "owner change refused", "path", p, "owner_id", ownerID, "error", err)
		return err
	}
	d.log.Info(ctx, "owner changed", "path", p, "owner_id", ownerID)
	return nil
}

func (d *Directory) changeOwner(ctx context.Context, actor Actor, p string, ownerID int64) error {
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return err
	}
	acl, err := d.repomanager.ACLs().Get(ctx, p)
	if err != nil {
		return fmt.Errorf("acl for %s: %w", p, err)
	}
	if _, err := d.repomanager.Users().GetByID(ctx, ownerID); err != nil {
		return fmt.Errorf("owner #%d: %w", ownerID, err)
	}
	acl.OwnerID = ownerID
	return d.repomanager.ACLs().Put(ctx, *acl)
}

// ChangeGroup moves an existing entry to groupID. The entry's owner or a
// holder of modifyPermissions may do this.
func (d *Directory) ChangeGroup(ctx context.Context, actor Actor, p string, groupID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p = models.NormalizePath(p)
	err := d.changeGroup(ctx, actor, p, groupID)
	d.record(actor, models.ActionACLGroupChange, fmt.Sprintf("%s group #%d", p, groupID), err)
	if err != nil {
		d.log.Warn(ctx, "group change refused", "path", p, "group_id", groupID, "error", err)
		return err
	}
	d.log.Info(ctx, "group changed", "path", p, "group_id", groupID)
	return nil
}

func (d *Directory) changeGroup(ctx context.Context, actor Actor, p string, groupID int64) error {
	acl, err := d.repomanager.ACLs().Get(ctx, p)
	if err != nil {
		return fmt.Errorf("acl for %s: %w", p, err)
	}
	if err := d.authorizeACL(ctx, actor, *acl, acl); err != nil {
		return err
	}
	if _, err := d.repomanager.Groups().GetByID(ctx, groupID); err != nil {
		return fmt.Errorf("group #%d: %w", groupID, err)
	}
	acl.GroupID = groupID
	return d.repomanager.ACLs().Put(ctx, *acl)
}

// GetACL returns the entry stored for exactly p.
func (d *Directory) GetACL(ctx context.Context, p string) (models.ACL, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acl, err := d.repomanager.ACLs().Get(ctx, p)
	if err != nil {
		return models.ACL{}, false
	}
	return *acl, true
}

// EffectiveACL returns the entry governing p: its own or the nearest
// ancestor's.
func (d *Directory) EffectiveACL(ctx context.Context, p string) (models.ACL, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	acl, err := d.repomanager.ACLs().Nearest(ctx, p)
	if err != nil {
		return models.ACL{}, false
	}
	return *acl, true
}

func (d *Directory) ListACLs(ctx context.Context) []models.ACL {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.repomanager.ACLs().List(ctx)
	if err != nil {
		d.log.Error(ctx, "list acls", "error", err)
		return nil
	}
	return all
}

// CanAccess decides whether actor may perform access on p. Denials are
// audited.
func (d *Directory) CanAccess(ctx context.Context, actor Actor, p string, access models.Access) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p = models.NormalizePath(p)
	if actor.System {
		return true
	}

	ok, err := d.canAccess(ctx, actor, p, access)
	if !ok {
		if err == nil {
			err = common.ErrForbidden
		}
		d.record(actor, models.ActionAccessDenied, fmt.Sprintf("%s %s", access, p), err)
		d.log.Warn(ctx, "access denied", "username", actor.Username, "path", p, "access", access.String())
	}
	return ok
}

func (d *Directory) canAccess(ctx context.Context, actor Actor, p string, access models.Access) (bool, error) {
	u, err := d.principal(ctx, actor)
	if err != nil {
		return false, err
	}
	groupIDs, err := d.groupIDsOf(ctx, u.ID)
	if err != nil {
		return false, err
	}

	req := permissions.ResourceRequest{
		User:     *u,
		GroupIDs: groupIDs,
		Path:     p,
		Access:   access,
	}
	acl, err := d.repomanager.ACLs().Nearest(ctx, p)
	switch {
	case err == nil:
		req.ACL = acl
	case !errors.Is(err, common.ErrNotFound):
		return false, err
	}
	return d.perms.CanAccess(req), nil
}
