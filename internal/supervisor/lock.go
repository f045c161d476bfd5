package supervisor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/process"
)

// ErrLockHeld is returned by AcquireLock when another live supervisor
// already owns the lock file.
type ErrLockHeld struct {
	PID int
}

func (e *ErrLockHeld) Error() string {
	return fmt.Sprintf("supervisor already running (pid %d)", e.PID)
}

// AcquireLock claims the single-instance lock, writing the current
// process's PID into it. A stale lock (dead PID) is taken over
// silently; a live one is reported via ErrLockHeld so the caller can
// name the owning PID in its diagnostic.
func AcquireLock(l paths.Layout) error {
	path := l.LockFile()
	if b, err := os.ReadFile(path); err == nil {
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(b))); perr == nil && process.Alive(pid) {
			return &ErrLockHeld{PID: pid}
		}
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// ReleaseLock removes the lock file if it is owned by this process.
// It is safe to call unconditionally during shutdown, including after
// a failed AcquireLock.
func ReleaseLock(l paths.Layout) {
	path := l.LockFile()
	b, err := os.ReadFile(path)
	if err != nil {
		return
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid != os.Getpid() {
		return
	}
	_ = os.Remove(path)
}
