package main

import (
	"errors"
	"strconv"

	"github.com/ada-cli/ada/internal/exitcodes"
	"github.com/ada-cli/ada/internal/process"
	"github.com/ada-cli/ada/internal/supervisor"
	ui "github.com/ada-cli/ada/internal/ui"
)

// errorMessageFor turns a returned command error into a structured,
// actionable ErrorMessage. Errors ada recognizes get causes and next
// steps; anything else falls back to a bare problem statement.
func errorMessageFor(err error) ui.ErrorMessage {
	msg := ui.ErrorMessage{Problem: err.Error()}

	var lockErr *supervisor.ErrLockHeld
	switch {
	case errors.As(err, &lockErr):
		msg.Causes = []string{"another \"ada watch\" is already running for this ada home directory"}
		msg.Actions = []string{"let the existing watcher keep running", "or stop it and retry: kill " + strconv.Itoa(lockErr.PID)}

	case errors.Is(err, process.ErrDirMissing):
		msg.Causes = []string{"the service's configured working directory does not exist"}
		msg.Actions = []string{"create the directory, or re-declare the service: ada remove <name>, then ada add <name> <cmd> <dir>"}

	case errors.Is(err, process.ErrImmediateExit):
		msg.Causes = []string{"the command exited before the post-spawn liveness check"}
		msg.Actions = []string{"check the service's log: ada logs <name> -n 50"}
	}

	var ec *exitcodes.ErrorWithCode
	if errors.As(err, &ec) {
		switch ec.Code {
		case exitcodes.PreconditionFailed:
			if len(msg.Causes) == 0 {
				msg.Causes = []string{"the service name is unknown or the operation's precondition was not met"}
				msg.Actions = []string{"check the name with: ada status"}
			}
		case exitcodes.LockHeld:
			if len(msg.Causes) == 0 {
				msg.Causes = []string{"the supervisor lock file is held by a live process"}
			}
		}
	}

	return msg
}
