package shell

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App implements it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	checkIdle(ctx context.Context) bool
	usage() string
	Execute(ctx context.Context, cmd string, args []string) error
}

// runREPL reads commands from scanner until EOF, "exit" or "quit". The
// idle timeout is evaluated before every non-empty line, so a timed-out
// session is closed before the command runs. Command errors are shown via
// HumanError and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gatehouse %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		if a.checkIdle(ctx) {
			printlnFn("Session timed out due to inactivity. Please log in again.")
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "help", "?":
			printlnFn(a.usage())

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if err := a.Execute(ctx, cmd, parts[1:]); err != nil {
				printlnFn(HumanError(err))
			}
		}
	}
}
