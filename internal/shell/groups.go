package shell

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

func (a *App) memberNames(ctx context.Context, g models.Group) string {
	names := make([]string, 0, len(g.Members))
	for _, id := range g.Members {
		if u, ok := a.core.Directory.FindByID(ctx, id); ok {
			names = append(names, u.Username)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func (a *App) groups(ctx context.Context, _ services.Actor, args []string) error {
	var list []models.Group
	if len(args) > 0 {
		u, err := a.lookupUser(ctx, args[0])
		if err != nil {
			return err
		}
		list = a.core.Directory.GroupsOf(ctx, u.ID)
	} else {
		list = a.core.Directory.ListGroups(ctx)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGROUP\tMEMBERS")
	for _, g := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", g.ID, g.Name, a.memberNames(ctx, g))
	}
	return tw.Flush()
}

func (a *App) groupAdd(ctx context.Context, actor services.Actor, args []string) error {
	id, err := a.core.Directory.CreateGroup(ctx, actor, args[0])
	if err != nil {
		return err
	}
	a.printf("Group %s created with id %d.\n", args[0], id)
	return nil
}

func (a *App) groupDel(ctx context.Context, actor services.Actor, args []string) error {
	g, err := a.lookupGroup(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.core.Directory.DeleteGroup(ctx, actor, g.ID); err != nil {
		return err
	}
	a.printf("Group %s deleted.\n", g.Name)
	return nil
}

func (a *App) gpasswd(ctx context.Context, actor services.Actor, args []string) error {
	g, err := a.lookupGroup(ctx, args[1])
	if err != nil {
		return err
	}
	u, err := a.lookupUser(ctx, args[2])
	if err != nil {
		return err
	}

	switch strings.ToLower(args[0]) {
	case "add", "-a":
		if err := a.core.Directory.AddToGroup(ctx, actor, g.ID, u.ID); err != nil {
			return err
		}
		a.printf("Added %s to %s.\n", u.Username, g.Name)
	case "remove", "-d":
		if err := a.core.Directory.RemoveFromGroup(ctx, actor, g.ID, u.ID); err != nil {
			return err
		}
		a.printf("Removed %s from %s.\n", u.Username, g.Name)
	default:
		return usageError{a.commands["gpasswd"].usage}
	}
	return nil
}
