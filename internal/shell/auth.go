package shell

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

const timeLayout = "2006-01-02 15:04:05"

func (a *App) login(ctx context.Context, _ services.Actor, args []string) error {
	var (
		username string
		err      error
	)
	if len(args) > 0 {
		username = args[0]
	} else if username, err = a.prompt("Username"); err != nil {
		return err
	}

	secret, err := a.secret("Password")
	if err != nil {
		return err
	}

	u, err := a.core.Session.Login(ctx, username, secret)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			if n := a.core.Session.RemainingAttempts(); n > 0 {
				a.printf("%d attempt(s) remaining.\n", n)
			}
		}
		return err
	}

	a.printf("Welcome, %s (%s).\n", u.Username, u.Role)
	return nil
}

func (a *App) logout(ctx context.Context, actor services.Actor, _ []string) error {
	a.core.Session.Logout(ctx)
	a.printf("Goodbye, %s.\n", actor.Username)
	return nil
}

func (a *App) whoami(ctx context.Context, _ services.Actor, _ []string) error {
	info := a.core.Session.Info(ctx)
	eff, err := a.core.Directory.EffectiveCapabilities(ctx, info.UserID)
	if err != nil {
		return err
	}

	a.printf("User:          %s (id %d)\n", info.Username, info.UserID)
	a.printf("Role:          %s\n", info.Role)
	a.printf("Capabilities:  [%s] %s\n", eff.Flags(), eff)
	a.printf("Session:       %s\n", info.ID)
	a.printf("Logged in at:  %s\n", info.LoginAt.Format(timeLayout))
	a.printf("Last activity: %s\n", info.LastActivityAt.Format(timeLayout))
	if !info.LockedUntil.IsZero() {
		a.printf("Locked until:  %s\n", info.LockedUntil.Format(timeLayout))
	}
	return nil
}

// passwd changes the caller's own secret, or with a username resets
// another user's.
func (a *App) passwd(ctx context.Context, actor services.Actor, args []string) error {
	if len(args) > 0 {
		u, err := a.lookupUser(ctx, args[0])
		if err != nil {
			return err
		}
		if u.ID != actor.ID {
			secret, err := a.newSecret("New password")
			if err != nil {
				return err
			}
			if err := a.core.Directory.ResetSecret(ctx, actor, u.ID, secret); err != nil {
				return err
			}
			a.printf("Password for %s reset.\n", u.Username)
			return nil
		}
	}

	old, err := a.secret("Current password")
	if err != nil {
		return err
	}
	secret, err := a.newSecret("New password")
	if err != nil {
		return err
	}
	if err := a.core.Directory.ChangeSecret(ctx, actor, actor.ID, old, secret); err != nil {
		return err
	}
	a.printf("Password changed.\n")
	return nil
}
