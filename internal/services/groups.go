package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
)

var defaultGroups = []models.Group{
	{ID: models.GroupAdministrators, Name: "Administrators"},
	{ID: models.GroupUsers, Name: "Users"},
	{ID: models.GroupGuests, Name: "Guests"},
}

func (d *Directory) seedGroups(ctx context.Context) error {
	repo := d.repomanager.Groups()
	existing, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, g := range defaultGroups {
		if _, err := repo.Create(ctx, &g); err != nil {
			return fmt.Errorf("seed group %s: %w", g.Name, err)
		}
	}
	return nil
}

func (d *Directory) joinGroup(ctx context.Context, groupID, userID int64) error {
	repo := d.repomanager.Groups()
	g, err := repo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if g.HasMember(userID) {
		return nil
	}
	g.Members = append(g.Members, userID)
	return repo.Update(ctx, g)
}

func (d *Directory) leaveGroup(ctx context.Context, groupID, userID int64) error {
	repo := d.repomanager.Groups()
	g, err := repo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.HasMember(userID) {
		return fmt.Errorf("user #%d in group %s: %w", userID, g.Name, common.ErrNotFound)
	}
	g.Members = slices.DeleteFunc(g.Members, func(id int64) bool { return id == userID })
	return repo.Update(ctx, g)
}

func (d *Directory) dropMemberships(ctx context.Context, userID int64) error {
	all, err := d.repomanager.Groups().List(ctx)
	if err != nil {
		return err
	}
	for _, g := range all {
		if g.HasMember(userID) {
			if err := d.leaveGroup(ctx, g.ID, userID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Directory) groupIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	all, err := d.repomanager.Groups().List(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for _, g := range all {
		if g.HasMember(userID) {
			ids = append(ids, g.ID)
		}
	}
	return ids, nil
}

// CreateGroup adds an empty group.
func (d *Directory) CreateGroup(ctx context.Context, actor Actor, name string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name = strings.TrimSpace(name)
	id, err := d.createGroup(ctx, actor, name)
	d.record(actor, models.ActionGroupCreate, fmt.Sprintf("group %s", name), err)
	if err != nil {
		d.log.Warn(ctx, "create group refused", "group", name, "error", err)
		return 0, err
	}
	d.log.Info(ctx, "group created", "group", name, "group_id", id)
	return id, nil
}

func (d *Directory) createGroup(ctx context.Context, actor Actor, name string) (int64, error) {
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return 0, err
	}
	if err := checkName(name); err != nil {
		return 0, err
	}
	g, err := d.repomanager.Groups().Create(ctx, &models.Group{Name: name})
	if err != nil {
		return 0, err
	}
	return g.ID, nil
}

// DeleteGroup removes a group. The default groups cannot be deleted.
func (d *Directory) DeleteGroup(ctx context.Context, actor Actor, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, err := d.deleteGroup(ctx, actor, id)
	d.record(actor, models.ActionGroupDelete, fmt.Sprintf("group %s", name), err)
	if err != nil {
		d.log.Warn(ctx, "delete group refused", "group_id", id, "error", err)
		return err
	}
	d.log.Info(ctx, "group deleted", "group", name, "group_id", id)
	return nil
}

func (d *Directory) deleteGroup(ctx context.Context, actor Actor, id int64) (string, error) {
	name := fmt.Sprintf("#%d", id)
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return name, err
	}

	repo := d.repomanager.Groups()
	g, err := repo.GetByID(ctx, id)
	if err != nil {
		return name, err
	}
	name = g.Name
	if g.IsBuiltin() {
		return name, fmt.Errorf("default group %s: %w", g.Name, common.ErrForbidden)
	}
	return name, repo.Delete(ctx, id)
}

// AddToGroup makes userID a member of groupID.
func (d *Directory) AddToGroup(ctx context.Context, actor Actor, groupID, userID int64) error {
	return d.membership(ctx, actor, groupID, userID, true)
}

// RemoveFromGroup drops userID from groupID.
func (d *Directory) RemoveFromGroup(ctx context.Context, actor Actor, groupID, userID int64) error {
	return d.membership(ctx, actor, groupID, userID, false)
}

func (d *Directory) membership(ctx context.Context, actor Actor, groupID, userID int64, add bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	action := models.ActionGroupMemberAdd
	if !add {
		action = models.ActionGroupMemberRemove
	}

	detail, err := d.changeMembership(ctx, actor, groupID, userID, add)
	d.record(actor, action, detail, err)
	if err != nil {
		d.log.Warn(ctx, "membership change refused", "group_id", groupID, "user_id", userID, "add", add, "error", err)
		return err
	}
	d.log.Info(ctx, "membership changed", "group_id", groupID, "user_id", userID, "add", add)
	return nil
}

func (d *Directory) changeMembership(ctx context.Context, actor Actor, groupID, userID int64, add bool) (string, error) {
	detail := fmt.Sprintf("group #%d user #%d", groupID, userID)
	if err := d.authorize(ctx, actor, models.CapModifyPermissions); err != nil {
		return detail, err
	}

	g, err := d.repomanager.Groups().GetByID(ctx, groupID)
	if err != nil {
		return detail, err
	}
	u, err := d.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return detail, err
	}
	detail = fmt.Sprintf("group %s user %s", g.Name, u.Username)

	if add {
		return detail, d.joinGroup(ctx, groupID, userID)
	}
	return detail, d.leaveGroup(ctx, groupID, userID)
}

// ListGroups returns every group ordered by id.
func (d *Directory) ListGroups(ctx context.Context) []models.Group {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.repomanager.Groups().List(ctx)
	if err != nil {
		d.log.Error(ctx, "list groups", "error", err)
		return nil
	}
	return all
}

// FindGroup matches group names case-insensitively.
func (d *Directory) FindGroup(ctx context.Context, name string) (models.Group, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, err := d.repomanager.Groups().GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return models.Group{}, false
	}
	return *g, true
}

// GroupsOf lists the groups userID belongs to.
func (d *Directory) GroupsOf(ctx context.Context, userID int64) []models.Group {
	d.mu.Lock()
	defer d.mu.Unlock()

	all, err := d.repomanager.Groups().List(ctx)
	if err != nil {
		d.log.Error(ctx, "list groups", "error", err)
		return nil
	}
	return slices.DeleteFunc(all, func(g models.Group) bool { return !g.HasMember(userID) })
}
