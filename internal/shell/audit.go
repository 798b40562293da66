package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/dmitrijs2005/gatehouse/internal/services"
)

const defaultAuditLines = 20

func (a *App) audit(ctx context.Context, _ services.Actor, args []string) error {
	actor, err := a.core.Session.RequireCapability(ctx, models.CapSystemAdmin)
	if err != nil {
		return err
	}

	var entries []models.AuditEntry
	switch {
	case len(args) == 0:
		entries = a.core.Audit.Recent(defaultAuditLines)

	case args[0] == "user" && len(args) == 2:
		entries = a.core.Audit.ForUser(args[1])

	case args[0] == "query" && len(args) > 1:
		entries, err = a.core.Audit.Query(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

	case args[0] == "clear" && len(args) == 1:
		n := a.core.Audit.Len()
		a.core.Audit.Record(actor.Username, models.ActionAuditClear, strconv.Itoa(n)+" entries", true)
		a.core.Audit.Clear()
		a.core.Logger.Warn(ctx, "audit log cleared", "username", actor.Username, "entries", n)
		a.printf("Audit log cleared (%d entries).\n", n)
		return nil

	default:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || len(args) > 1 {
			return usageError{a.commands["audit"].usage}
		}
		entries = a.core.Audit.Recent(n)
	}

	if len(entries) == 0 {
		a.printf("No audit entries.\n")
		return nil
	}
	for _, e := range entries {
		a.printf("%s\n", formatEntry(e))
	}
	return nil
}

func formatEntry(e models.AuditEntry) string {
	status := "OK  "
	if !e.Success {
		status = "FAIL"
	}
	line := fmt.Sprintf("#%d %s %s %s %s", e.Seq, e.Timestamp.Format(timeLayout), status, e.Username, e.Action)
	if e.Detail != "" {
		line += " " + e.Detail
	}
	return line
}
