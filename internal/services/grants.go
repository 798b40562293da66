package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
)

// Grant adds c to the user's explicit grants, cancelling a revoke of c.
func (d *Directory) Grant(ctx context.Context, actor Actor, id int64, c models.Capability) error {
	return d.override(ctx, actor, id, c, models.ActionPermissionGrant, models.Overrides.Grant)
}

// Revoke adds c to the user's explicit revokes, cancelling a grant of c.
func (d *Directory) Revoke(ctx context.Context, actor Actor, id int64, c models.Capability) error {
	return d.override(ctx, actor, id, c, models.ActionPermissionRevoke, models.Overrides.Revoke)
}

func (d *Directory) override(ctx context.Context, actor Actor, id int64, c models.Capability,
	action models.AuditAction, apply func(models.Overrides, models.Capability) models.Overrides) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.applyOverride(ctx, actor, id, c, apply)
	d.record(actor, action, fmt.Sprintf("user %s capability %s", name, c), err)
	if err != nil {
		d.log.Warn(ctx, "override refused", "user_id", id, "capability", c.String(), "action", string(action), "error", err)
		return err
	}
	d.log.Info(ctx, "override applied", "username", name, "user_id", id, "capability", c.String(), "action", string(action))
	return nil
}

func (d *Directory) applyOverride(ctx context.Context, actor Actor, id int64, c models.Capability,
	apply func(models.Overrides, models.Capability) models.Overrides) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return name, err
	}
	if !slices.Contains(models.Capabilities(), c) {
		return name, fmt.Errorf("capability %d: %w", c, common.ErrInvalidArgument)
	}

	repo := d.repomanager.Users()
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = u.Username

	u.Overrides = apply(u.Overrides, c)
	return name, repo.Update(ctx, u)
}
