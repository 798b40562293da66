package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gatehouse/internal/common"
)

var errUnknownCommand = errors.New("unknown command")

type usageError struct {
	usage string
}

func (e usageError) Error() string {
	return "usage: " + e.usage
}

// HumanError turns an error from the core into a message for the user.
// Unknown usernames and wrong secrets produce the same text.
func HumanError(err error) string {
	var (
		locked *common.AccountLockedError
		usage  usageError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &usage):
		return "Usage: " + usage.usage
	case errors.Is(err, errUnknownCommand):
		return fmt.Sprintf("%v. Type 'help' for a list of commands.", err)
	case errors.As(err, &locked):
		return fmt.Sprintf("Too many failed attempts. Account locked, try again in %d seconds.", locked.RemainingSeconds())
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Login failed: invalid username or password."
	case errors.Is(err, common.ErrAccountDisabled):
		return "Account is disabled."
	case errors.Is(err, common.ErrNotAuthenticated):
		return "You must be logged in to do that."
	case errors.Is(err, common.ErrForbidden):
		return "Permission denied."
	case errors.Is(err, common.ErrLastAdminProtected):
		return "Refused: the last active administrator cannot be deleted, disabled or demoted."
	case errors.Is(err, common.ErrDuplicateUsername):
		return "A user with that name already exists."
	case errors.Is(err, common.ErrWeakSecret):
		return "Password is too short."
	case errors.Is(err, common.ErrSecretMismatch):
		return "Current password is incorrect."
	case errors.Is(err, common.ErrNotFound):
		return fmt.Sprintf("Not found: %s.", cause(err, common.ErrNotFound))
	case errors.Is(err, common.ErrInvalidArgument):
		return fmt.Sprintf("Invalid input: %s.", cause(err, common.ErrInvalidArgument))
	}
	return fmt.Sprintf("Error: %v", err)
}

// cause strips the trailing sentinel text from a wrapped error message.
func cause(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == sentinel.Error() {
		return "no such record"
	}
	return msg
}
