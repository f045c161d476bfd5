// Package process is the controller that launches, liveness-checks,
// and stops a declared service. A launched child is detached into its
// own session and process group so it survives the CLI invocation
// that started it, and so a later stop can reach every descendant by
// signaling the whole group rather than just the one PID ada recorded.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/shlex"
	gopsprocess "github.com/shirou/gopsutil/v3/process"

	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/logstore"
	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/settings"
	"github.com/ada-cli/ada/internal/state"
)

// ErrDirMissing is returned by Start when the service's working
// directory does not exist.
var ErrDirMissing = errors.New("working directory does not exist")

// ErrImmediateExit is returned by Start when the child process was
// not alive after the post-spawn grace period.
var ErrImmediateExit = errors.New("process exited immediately")

// Controller owns the start/stop/restart lifecycle for services
// rooted at a single ada home directory.
type Controller struct {
	layout   paths.Layout
	states   *state.Store
	settings settings.Settings

	// postSpawnPause and stopPoll are overridable by tests so the
	// liveness-check suite does not need to sleep wall-clock seconds.
	postSpawnPause time.Duration
	stopPoll       time.Duration
	killPause      time.Duration
}

// New returns a Controller bound to the given layout, state store and
// resolved tunables.
func New(l paths.Layout, states *state.Store, s settings.Settings) *Controller {
	return &Controller{
		layout:         l,
		states:         states,
		settings:       s,
		postSpawnPause: settings.DefaultPostSpawnGracePause,
		stopPoll:       1 * time.Second,
		killPause:      500 * time.Millisecond,
	}
}

// PID returns the recorded PID for name and whether it is currently
// alive. A stale PID file (process no longer alive) is removed as a
// side effect and started_at is cleared, per the status-reconciliation
// invariant that no on-disk record may claim a dead process is running.
func (c *Controller) PID(name string) (int, bool, error) {
	path := c.layout.PidFile(name)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read pid file %s: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		_ = os.Remove(path)
		_, uerr := c.states.Update(name, func(r *state.Record) { r.PID = nil; r.StartedAt = nil })
		return 0, false, uerr
	}
	if Alive(pid) {
		return pid, true, nil
	}
	_ = os.Remove(path)
	_, uerr := c.states.Update(name, func(r *state.Record) { r.PID = nil; r.StartedAt = nil })
	return 0, false, uerr
}

// IsRunning reports whether name currently has a live, recorded PID.
func (c *Controller) IsRunning(name string) (bool, error) {
	_, ok, err := c.PID(name)
	return ok, err
}

// Alive reports whether pid refers to a live process, via kill(pid,0).
// ESRCH (no such process) is the expected "not running" outcome, not
// an error.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil
}

// Start launches svc if it is not already running. It is a no-op
// success if a live PID is already on record.
func (c *Controller) Start(svc configstore.Service) error {
	if running, err := c.IsRunning(svc.Name); err != nil {
		return err
	} else if running {
		return nil
	}

	dir, err := paths.ExpandDir(svc.Dir)
	if err != nil {
		return fmt.Errorf("expand dir: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrDirMissing, dir)
	}

	env := os.Environ()
	if svc.EnvFile != "" {
		envPath, eerr := paths.ExpandDir(svc.EnvFile)
		if eerr == nil {
			if vars, perr := ParseEnvFile(envPath); perr == nil {
				for k, v := range vars {
					env = append(env, k+"="+v)
				}
			} else if os.IsNotExist(perr) {
				fmt.Fprintf(os.Stderr, "warning: env_file %s not found for %s, starting without it\n", envPath, svc.Name)
			} else {
				fmt.Fprintf(os.Stderr, "warning: could not parse env_file %s for %s: %v\n", envPath, svc.Name, perr)
			}
		}
	}

	logPath := c.layout.LogFile(svc.Name)
	rotator := logstore.New(logPath, c.settings.MaxLogBytes)
	if err := rotator.RotateIfNeeded(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: log rotation failed for %s: %v\n", svc.Name, err)
	}
	if err := logstore.AppendMarker(logPath, "starting", svc.Name); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write start marker for %s: %v\n", svc.Name, err)
	}

	args, err := shlex.Split(svc.Cmd)
	if err != nil || len(args) == 0 {
		return fmt.Errorf("parse cmd %q: %v", svc.Cmd, err)
	}

	lf, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log %s: %w", logPath, err)
	}
	defer lf.Close()

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = lf
	cmd.Stderr = lf
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", svc.Name, err)
	}
	pid := cmd.Process.Pid

	// The child is detached; release it so this process does not leak
	// a zombie entry waiting on it.
	go func() { _, _ = cmd.Process.Wait() }()

	time.Sleep(c.postSpawnPause)

	if !Alive(pid) {
		_ = os.Remove(c.layout.PidFile(svc.Name))
		if _, err := c.states.Update(svc.Name, func(r *state.Record) {
			r.PID = nil
			r.StartedAt = nil
		}); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", ErrImmediateExit, svc.Name)
	}

	if err := os.WriteFile(c.layout.PidFile(svc.Name), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		_ = syscall.Kill(pid, syscall.SIGTERM)
		return fmt.Errorf("write pid file: %w", err)
	}
	now := time.Now().Unix()
	_, err = c.states.Update(svc.Name, func(r *state.Record) {
		p := pid
		r.PID = &p
		r.StartedAt = &now
	})
	return err
}

// Stop terminates the named service. A missing or already-dead PID is
// treated as a successful no-op after cleanup.
func (c *Controller) Stop(name string) error {
	pid, ok, err := c.PID(name)
	if err != nil {
		return err
	}
	if !ok {
		return c.finishStop(name)
	}

	pgid, pgidErr := syscall.Getpgid(pid)
	targetGroup := pgidErr == nil && pgid > 1

	c.signal(pid, pgid, targetGroup, syscall.SIGTERM)

	deadline := time.Now().Add(c.settings.StopGrace)
	for time.Now().Before(deadline) {
		if !Alive(pid) {
			return c.finishStop(name)
		}
		time.Sleep(c.stopPoll)
	}

	c.signal(pid, pgid, targetGroup, syscall.SIGKILL)
	time.Sleep(c.killPause)

	return c.finishStop(name)
}

// signal delivers sig to the process group if targetGroup is true and
// valid, falling back to the single PID. A failure other than ESRCH
// (the process is already gone) is a best-effort warning only; the
// caller continues its escalation regardless.
func (c *Controller) signal(pid, pgid int, targetGroup bool, sig syscall.Signal) {
	var err error
	if targetGroup {
		err = syscall.Kill(-pgid, sig)
	} else {
		err = syscall.Kill(pid, sig)
	}
	if err != nil && !errors.Is(err, syscall.ESRCH) {
		fmt.Fprintf(os.Stderr, "warning: signal %v to pid %d failed: %v\n", sig, pid, err)
	}
}

// finishStop removes the PID file, clears started_at, appends a stop
// marker, and reports success regardless of whether SIGKILL was
// needed to get there.
func (c *Controller) finishStop(name string) error {
	_ = os.Remove(c.layout.PidFile(name))
	if _, err := c.states.Update(name, func(r *state.Record) {
		r.PID = nil
		r.StartedAt = nil
	}); err != nil {
		return err
	}
	if err := logstore.AppendMarker(c.layout.LogFile(name), "stopped", name); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write stop marker for %s: %v\n", name, err)
	}
	return nil
}

// Uptime returns how long name has been running, preferring the OS's
// own notion of process start time (via gopsutil) and falling back to
// the recorded started_at when the OS lookup is unavailable (e.g.
// insufficient permissions).
func (c *Controller) Uptime(name string) (time.Duration, bool) {
	pid, ok, err := c.PID(name)
	if err != nil || !ok {
		return 0, false
	}
	if p, perr := gopsprocess.NewProcess(int32(pid)); perr == nil {
		if createMs, cerr := p.CreateTime(); cerr == nil {
			started := time.UnixMilli(createMs)
			if d := time.Since(started); d >= 0 {
				return d, true
			}
		}
	}
	rec, err := c.states.Read(name)
	if err != nil || rec.StartedAt == nil {
		return 0, false
	}
	return time.Since(time.Unix(*rec.StartedAt, 0)), true
}
