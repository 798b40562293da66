package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
)

// ChangeSecret replaces the user's secret after checking the old one. Only
// the user itself (or the system actor) may do this.
func (d *Directory) ChangeSecret(ctx context.Context, actor Actor, id int64, oldSecret, newSecret string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.changeSecret(ctx, actor, id, oldSecret, newSecret)
	d.record(actor, models.ActionPasswordChange, fmt.Sprintf("user %s", name), err)
	if err != nil {
		d.log.Warn(ctx, "secret change refused", "user_id", id, "error", err)
		return err
	}
	d.log.Info(ctx, "secret changed", "username", name, "user_id", id)
	return nil
}

func (d *Directory) changeSecret(ctx context.Context, actor Actor, id int64, oldSecret, newSecret string) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if !actor.System {
		if _, err := d.principal(ctx, actor); err != nil {
			return name, err
		}
		if actor.ID != id {
			return name, fmt.Errorf("secret of another user: %w", common.ErrForbidden)
		}
	}

	repo := d.repomanager.Users()
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = u.Username

	if !d.hasher.Verify(oldSecret, u.SecretHash) {
		return name, common.ErrSecretMismatch
	}
	return name, d.storeSecret(ctx, u, newSecret)
}

// ResetSecret sets a new secret without the old one. It requires the
// systemAdmin capability.
func (d *Directory) ResetSecret(ctx context.Context, actor Actor, id int64, newSecret string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.resetSecret(ctx, actor, id, newSecret)
	d.record(actor, models.ActionPasswordReset, fmt.Sprintf("user %s", name), err)
	if err != nil {
		d.log.Warn(ctx, "secret reset refused", "user_id", id, "error", err)
		return err
	}
	d.log.Info(ctx, "secret reset", "username", name, "user_id", id)
	return nil
}

func (d *Directory) resetSecret(ctx context.Context, actor Actor, id int64, newSecret string) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if err := d.authorize(ctx, actor, models.CapSystemAdmin); err != nil {
		return name, err
	}

	u, err := d.repomanager.Users().GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = u.Username
	return name, d.storeSecret(ctx, u, newSecret)
}

func (d *Directory) storeSecret(ctx context.Context, u *models.User, secret string) error {
	if err := d.checkSecret(secret); err != nil {
		return err
	}
	hash, err := d.hasher.Hash(secret)
	if err != nil {
		return err
	}
	u.SecretHash = hash
	return d.repomanager.Users().Update(ctx, u)
}
