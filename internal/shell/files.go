package shell

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

func parseAccess(s string) (models.Access, error) {
	acc, err := models.ParseAccess(s)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, common.ErrInvalidArgument)
	}
	return acc, nil
}

// chmod sets all three tiers. A path without an entry gets one owned by
// the caller and the default group of the caller's role.
func (a *App) chmod(ctx context.Context, actor services.Actor, args []string) error {
	var tiers [3]models.Access
	for i := range tiers {
		acc, err := parseAccess(args[i+1])
		if err != nil {
			return err
		}
		tiers[i] = acc
	}

	acl, ok := a.core.Directory.GetACL(ctx, args[0])
	if !ok {
		u, err := a.lookupUser(ctx, actor.Username)
		if err != nil {
			return err
		}
		acl = models.NewACL(args[0], u.ID, models.DefaultGroupFor(u.Role))
	}
	acl.Owner, acl.Group, acl.Others = tiers[0], tiers[1], tiers[2]

	if err := a.core.Directory.SetACL(ctx, actor, acl); err != nil {
		return err
	}
	a.printf("%s %s\n", acl, models.NormalizePath(args[0]))
	return nil
}

func (a *App) chown(ctx context.Context, actor services.Actor, args []string) error {
	u, err := a.lookupUser(ctx, args[1])
	if err != nil {
		return err
	}
	if err := a.core.Directory.ChangeOwner(ctx, actor, args[0], u.ID); err != nil {
		return err
	}
	a.printf("Owner of %s is now %s.\n", models.NormalizePath(args[0]), u.Username)
	return nil
}

func (a *App) chgrp(ctx context.Context, actor services.Actor, args []string) error {
	g, err := a.lookupGroup(ctx, args[1])
	if err != nil {
		return err
	}
	if err := a.core.Directory.ChangeGroup(ctx, actor, args[0], g.ID); err != nil {
		return err
	}
	a.printf("Group of %s is now %s.\n", models.NormalizePath(args[0]), g.Name)
	return nil
}

func (a *App) access(ctx context.Context, actor services.Actor, args []string) error {
	acc, err := parseAccess(args[1])
	if err != nil {
		return err
	}
	p := models.NormalizePath(args[0])
	if a.core.Directory.CanAccess(ctx, actor, p, acc) {
		a.printf("allowed: %s %s\n", acc, p)
		return nil
	}
	a.printf("denied: %s %s\n", acc, p)
	return nil
}

func (a *App) ownerName(ctx context.Context, id int64) string {
	if u, ok := a.core.Directory.FindByID(ctx, id); ok {
		return u.Username
	}
	return fmt.Sprintf("#%d", id)
}

func (a *App) groupName(ctx context.Context, id int64) string {
	for _, g := range a.core.Directory.ListGroups(ctx) {
		if g.ID == id {
			return g.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

// acl lists every entry, or shows the one governing a path.
func (a *App) acl(ctx context.Context, _ services.Actor, args []string) error {
	var list []models.ACL
	if len(args) > 0 {
		acl, ok := a.core.Directory.EffectiveACL(ctx, args[0])
		if !ok {
			a.printf("No entry governs %s; path rules apply.\n", models.NormalizePath(args[0]))
			return nil
		}
		list = []models.ACL{acl}
	} else {
		list = a.core.Directory.ListACLs(ctx)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RIGHTS\tOWNER\tGROUP\tPATH")
	for _, acl := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", acl, a.ownerName(ctx, acl.OwnerID), a.groupName(ctx, acl.GroupID), acl.Path)
	}
	return tw.Flush()
}
