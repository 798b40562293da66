package shell

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

func (a *App) userAdd(ctx context.Context, actor services.Actor, args []string) error {
	role := models.RoleStandard
	if len(args) > 1 {
		r, err := models.ParseRole(args[1])
		if err != nil {
			return fmt.Errorf("%v: %w", err, common.ErrInvalidArgument)
		}
		role = r
	}

	secret, err := a.newSecret("Password")
	if err != nil {
		return err
	}

	id, err := a.core.Directory.CreateUser(ctx, actor, args[0], secret, role)
	if err != nil {
		return err
	}
	a.printf("User %s created with id %d and role %s.\n", args[0], id, role)
	return nil
}

func (a *App) userDel(ctx context.Context, actor services.Actor, args []string) error {
	u, err := a.lookupUser(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.core.Directory.DeleteUser(ctx, actor, u.ID); err != nil {
		return err
	}
	a.printf("User %s deleted.\n", u.Username)
	return nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "y", "true", "on", "1":
		return true, nil
	case "no", "n", "false", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected yes or no, got %q: %w", s, common.ErrInvalidArgument)
}

func (a *App) userMod(ctx context.Context, actor services.Actor, args []string) error {
	u, err := a.lookupUser(ctx, args[0])
	if err != nil {
		return err
	}

	switch strings.ToLower(args[1]) {
	case "role":
		role, err := models.ParseRole(args[2])
		if err != nil {
			return fmt.Errorf("%v: %w", err, common.ErrInvalidArgument)
		}
		if err := a.core.Directory.SetRole(ctx, actor, u.ID, role); err != nil {
			return err
		}
		a.printf("Role of %s set to %s.\n", u.Username, role)
	case "active":
		active, err := parseYesNo(args[2])
		if err != nil {
			return err
		}
		return a.setActive(ctx, actor, u, active)
	default:
		return usageError{a.commands["usermod"].usage}
	}
	return nil
}

func (a *App) enable(ctx context.Context, actor services.Actor, args []string) error {
	u, err := a.lookupUser(ctx, args[0])
	if err != nil {
		return err
	}
	return a.setActive(ctx, actor, u, true)
}

func (a *App) disable(ctx context.Context, actor services.Actor, args []string) error {
	u, err := a.lookupUser(ctx, args[0])
	if err != nil {
		return err
	}
	return a.setActive(ctx, actor, u, false)
}

func (a *App) setActive(ctx context.Context, actor services.Actor, u models.User, active bool) error {
	if err := a.core.Directory.SetActive(ctx, actor, u.ID, active); err != nil {
		return err
	}
	state := "enabled"
	if !active {
		state = "disabled"
	}
	a.printf("Account %s %s.\n", u.Username, state)
	return nil
}

func (a *App) grant(ctx context.Context, actor services.Actor, args []string) error {
	return a.override(ctx, actor, args, true)
}

func (a *App) revoke(ctx context.Context, actor services.Actor, args []string) error {
	return a.override(ctx, actor, args, false)
}

func (a *App) override(ctx context.Context, actor services.Actor, args []string, grant bool) error {
	u, err := a.lookupUser(ctx, args[0])
	if err != nil {
		return err
	}
	c, err := models.ParseCapability(args[1])
	if err != nil {
		return fmt.Errorf("%v: %w", err, common.ErrInvalidArgument)
	}

	if grant {
		err = a.core.Directory.Grant(ctx, actor, u.ID, c)
	} else {
		err = a.core.Directory.Revoke(ctx, actor, u.ID, c)
	}
	if err != nil {
		return err
	}

	verb := "granted to"
	if !grant {
		verb = "revoked from"
	}
	a.printf("Capability %s %s %s.\n", c, verb, u.Username)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) users(ctx context.Context, _ services.Actor, _ []string) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSER\tROLE\tACTIVE\tLAST LOGIN\tHOME")
	for _, u := range a.core.Directory.ListAll(ctx) {
		last := "never"
		if u.HasLoggedIn() {
			last = u.LastLoginAt.Format(timeLayout)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, yesNo(u.IsActive), last, u.HomeDirectory)
	}
	return tw.Flush()
}

// perms shows the caller's permissions, or another user's for holders of
// modifyPermissions.
func (a *App) perms(ctx context.Context, actor services.Actor, args []string) error {
	id := actor.ID
	if len(args) > 0 {
		u, err := a.lookupUser(ctx, args[0])
		if err != nil {
			return err
		}
		if u.ID != actor.ID {
			if _, err := a.core.Session.RequireCapability(ctx, models.CapModifyPermissions); err != nil {
				return err
			}
		}
		id = u.ID
	}

	u, _ := a.core.Directory.FindByID(ctx, id)
	summary, err := a.core.Directory.PermissionSummary(ctx, id)
	if err != nil {
		return err
	}
	eff, err := a.core.Directory.EffectiveCapabilities(ctx, id)
	if err != nil {
		return err
	}

	a.printf("%s: %s\n", u.Username, summary)
	a.printf("  role default: %s\n", a.core.Directory.Permissions().DefaultCapabilities(u.Role))
	a.printf("  granted:      %s\n", u.Overrides.Granted)
	a.printf("  revoked:      %s\n", u.Overrides.Revoked)
	a.printf("  effective:    [%s] %s\n", eff.Flags(), eff)
	return nil
}

func (a *App) stats(ctx context.Context, _ services.Actor, _ []string) error {
	st, err := a.core.Directory.Stats(ctx)
	if err != nil {
		return err
	}
	a.printf("Users:   %d total, %d active, %d active admins\n", st.Total, st.Active, st.Admins)
	for _, r := range models.Roles() {
		a.printf("  %-10s %d\n", r, st.ByRole[r])
	}
	a.printf("Groups:  %d\n", st.Groups)
	a.printf("ACLs:    %d\n", st.ACLs)
	a.printf("Audit:   %d/%d entries\n", a.core.Audit.Len(), a.core.Audit.Capacity())
	return nil
}
