package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/core"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

type command struct {
	usage   string
	summary string
	minArgs int
	// auth commands run only for a logged-in principal and count as
	// activity for the idle timeout.
	auth bool
	run  func(a *App, ctx context.Context, actor services.Actor, args []string) error
}

type App struct {
	core     *core.Core
	scanner  *bufio.Scanner
	out      io.Writer
	fd       int
	terminal bool
	commands map[string]command
}

// NewApp binds the shell to c, reading commands from in and writing to
// out. Secrets are read without echo when in is a terminal.
func NewApp(c *core.Core, in io.Reader, out io.Writer) *App {
	a := &App{
		core:     c,
		scanner:  bufio.NewScanner(in),
		out:      out,
		fd:       -1,
		commands: commandTable(),
	}
	if f, ok := in.(*os.File); ok {
		a.fd = int(f.Fd())
		a.terminal = isTerminal(a.fd)
	}
	return a
}

// Run blocks until the user exits or input ends, then closes the session.
func (a *App) Run(ctx context.Context) {
	a.printf("Gatehouse identity shell (type 'help' for commands)\n")
	runREPL(ctx, a, a.status, a.scanner)
	a.core.Session.Logout(ctx)
}

func commandTable() map[string]command {
	t := map[string]command{
		"login":   {usage: "login [username]", summary: "sign in", run: (*App).login},
		"logout":  {usage: "logout", summary: "sign out", auth: true, run: (*App).logout},
		"whoami":  {usage: "whoami", summary: "show the current session", auth: true, run: (*App).whoami},
		"passwd":  {usage: "passwd [username]", summary: "change your password or reset another user's", auth: true, run: (*App).passwd},
		"useradd": {usage: "useradd <username> [role]", summary: "create a user", minArgs: 1, auth: true, run: (*App).userAdd},
		"userdel": {usage: "userdel <username>", summary: "delete a user", minArgs: 1, auth: true, run: (*App).userDel},
		"usermod": {usage: "usermod <username> role <role> | active <yes|no>", summary: "change a user's role or state", minArgs: 3, auth: true, run: (*App).userMod},
		"enable":  {usage: "enable <username>", summary: "enable an account", minArgs: 1, auth: true, run: (*App).enable},
		"disable": {usage: "disable <username>", summary: "disable an account", minArgs: 1, auth: true, run: (*App).disable},
		"grant":   {usage: "grant <username> <capability>", summary: "grant a capability", minArgs: 2, auth: true, run: (*App).grant},
		"revoke":  {usage: "revoke <username> <capability>", summary: "revoke a capability", minArgs: 2, auth: true, run: (*App).revoke},
		"users":   {usage: "users", summary: "list users", auth: true, run: (*App).users},
		"perms":   {usage: "perms [username]", summary: "show effective permissions", auth: true, run: (*App).perms},
		"stats":   {usage: "stats", summary: "show directory statistics", auth: true, run: (*App).stats},

		"groups":   {usage: "groups [username]", summary: "list groups", auth: true, run: (*App).groups},
		"groupadd": {usage: "groupadd <name>", summary: "create a group", minArgs: 1, auth: true, run: (*App).groupAdd},
		"groupdel": {usage: "groupdel <name>", summary: "delete a group", minArgs: 1, auth: true, run: (*App).groupDel},
		"gpasswd":  {usage: "gpasswd add|remove <group> <username>", summary: "change group membership", minArgs: 3, auth: true, run: (*App).gpasswd},

		"chmod":  {usage: "chmod <path> <owner> <group> <others>", summary: "set access rights (rwxd)", minArgs: 4, auth: true, run: (*App).chmod},
		"chown":  {usage: "chown <path> <username>", summary: "change owner", minArgs: 2, auth: true, run: (*App).chown},
		"chgrp":  {usage: "chgrp <path> <group>", summary: "change group", minArgs: 2, auth: true, run: (*App).chgrp},
		"access": {usage: "access <path> <rights>", summary: "check access to a path", minArgs: 2, auth: true, run: (*App).access},
		"acl":    {usage: "acl [path]", summary: "show access control entries", auth: true, run: (*App).acl},

		"audit": {usage: "audit [n | user <name> | query <expr> | clear]", summary: "show or clear the audit log", auth: true, run: (*App).audit},
	}
	t["userlist"] = t["users"]
	t["userstats"] = t["stats"]
	return t
}

func (a *App) isLoggedIn() bool {
	return a.core.Session.IsLoggedIn()
}

func (a *App) checkIdle(ctx context.Context) bool {
	return a.core.CheckIdle(ctx)
}

func (a *App) status() string {
	if u, ok := a.core.Session.CurrentUser(context.Background()); ok {
		return fmt.Sprintf("(%s %s) ", u.Username, u.Role)
	}
	return ""
}

func (a *App) usage() string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		c := a.commands[name]
		if strings.Fields(c.usage)[0] != name {
			continue
		}
		if c.auth != a.isLoggedIn() && name != "login" {
			continue
		}
		fmt.Fprintf(&b, "  %-42s %s\n", c.usage, c.summary)
	}
	fmt.Fprintf(&b, "  %-42s %s", "help | exit", "show this help | leave the shell")
	return b.String()
}

// Execute runs one command line.
func (a *App) Execute(ctx context.Context, name string, args []string) error {
	c, ok := a.commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}

	var actor services.Actor
	if c.auth {
		act, err := a.core.Session.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		actor = act
		a.core.Session.Touch()
	}

	if len(args) < c.minArgs {
		return usageError{c.usage}
	}
	return c.run(a, ctx, actor, args)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) prompt(label string) (string, error) {
	return GetSimpleText(a.scanner, label, a.out)
}

// secret reads a secret without echo on a terminal, or as a plain line
// otherwise.
func (a *App) secret(label string) (string, error) {
	if !a.terminal {
		return a.prompt(label)
	}
	b, err := GetPassword(a.fd, label, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return string(b), nil
}

// newSecret asks twice and fails when the entries differ.
func (a *App) newSecret(label string) (string, error) {
	s, err := a.secret(label)
	if err != nil {
		return "", err
	}
	confirm, err := a.secret("Confirm " + strings.ToLower(label))
	if err != nil {
		return "", err
	}
	if s != confirm {
		return "", fmt.Errorf("passwords do not match: %w", common.ErrInvalidArgument)
	}
	return s, nil
}

func (a *App) lookupUser(ctx context.Context, name string) (models.User, error) {
	u, ok := a.core.Directory.FindByUsername(ctx, name)
	if !ok {
		return models.User{}, fmt.Errorf("no such user %q: %w", name, common.ErrNotFound)
	}
	return u, nil
}

func (a *App) lookupGroup(ctx context.Context, name string) (models.Group, error) {
	g, ok := a.core.Directory.FindGroup(ctx, name)
	if !ok {
		return models.Group{}, fmt.Errorf("no such group %q: %w", name, common.ErrNotFound)
	}
	return g, nil
}
