package process

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/crashloop"
	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/settings"
	"github.com/ada-cli/ada/internal/state"
)

func newTestController(t *testing.T) (*Controller, paths.Layout, *state.Store) {
	t.Helper()
	l, _ := paths.New(t.TempDir())
	if err := l.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	st := state.New(l)
	s := settings.Defaults()
	s.StopGrace = 2 * time.Second
	c := New(l, st, s)
	c.postSpawnPause = 50 * time.Millisecond
	c.stopPoll = 50 * time.Millisecond
	c.killPause = 50 * time.Millisecond
	return c, l, st
}

func TestStartStopHappyPath(t *testing.T) {
	c, l, _ := newTestController(t)
	svc := configstore.Service{Name: "web", Cmd: "sleep 30", Dir: t.TempDir(), Enabled: true}

	if err := c.Start(svc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	running, err := c.IsRunning("web")
	if err != nil || !running {
		t.Fatalf("expected running after start, err=%v running=%v", err, running)
	}
	pid, ok, err := c.PID("web")
	if err != nil || !ok {
		t.Fatalf("PID: err=%v ok=%v", err, ok)
	}
	if _, err := os.Stat(l.PidFile("web")); err != nil {
		t.Fatalf("expected pid file to exist: %v", err)
	}

	if err := c.Stop("web"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if Alive(pid) {
		t.Fatalf("expected pid %d to be dead after stop", pid)
	}
	if _, err := os.Stat(l.PidFile("web")); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed after stop")
	}
	running, _ = c.IsRunning("web")
	if running {
		t.Fatalf("expected not running after stop")
	}
}

func TestStartNoopWhenAlreadyRunning(t *testing.T) {
	c, _, _ := newTestController(t)
	svc := configstore.Service{Name: "web", Cmd: "sleep 30", Dir: t.TempDir()}
	if err := c.Start(svc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	pid1, _, _ := c.PID("web")
	if err := c.Start(svc); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	pid2, _, _ := c.PID("web")
	if pid1 != pid2 {
		t.Fatalf("expected same pid on no-op restart attempt: %d vs %d", pid1, pid2)
	}
	_ = c.Stop("web")
}

func TestStartImmediateExitCleansUp(t *testing.T) {
	c, l, _ := newTestController(t)
	svc := configstore.Service{Name: "doomed", Cmd: "false", Dir: t.TempDir()}

	err := c.Start(svc)
	if err == nil {
		t.Fatalf("expected error for immediately-exiting command")
	}
	if _, statErr := os.Stat(l.PidFile("doomed")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no pid file after immediate exit")
	}
	rec, _ := state.New(l).Read("doomed")
	if rec.PID != nil || rec.StartedAt != nil {
		t.Fatalf("expected cleared state after immediate exit, got %+v", rec)
	}
	logBytes, _ := os.ReadFile(l.LogFile("doomed"))
	if len(logBytes) == 0 {
		t.Fatalf("expected a start marker to have been written to the log")
	}
}

func TestStartMissingDirIsFatal(t *testing.T) {
	c, _, _ := newTestController(t)
	svc := configstore.Service{Name: "web", Cmd: "sleep 1", Dir: filepath.Join(t.TempDir(), "does-not-exist")}
	if err := c.Start(svc); err == nil {
		t.Fatalf("expected error for missing working directory")
	}
}

func TestStopNotRunningIsSuccess(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Stop("never-started"); err != nil {
		t.Fatalf("Stop on never-started service should succeed: %v", err)
	}
}

func TestStopStalePidFileCleansUp(t *testing.T) {
	c, l, st := newTestController(t)
	// Write a PID file pointing at a definitely-dead PID (PID 1 would
	// be alive but unkillable by us; use a very unlikely high PID).
	deadPID := 1<<30 - 1
	if err := os.WriteFile(l.PidFile("web"), []byte("999999999"), 0o644); err != nil {
		t.Fatalf("seed stale pid: %v", err)
	}
	_ = deadPID
	started := int64(1000)
	pid := 999999999
	_ = st.Write("web", state.Record{PID: &pid, StartedAt: &started})

	if err := c.Stop("web"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := os.Stat(l.PidFile("web")); !os.IsNotExist(err) {
		t.Fatalf("expected stale pid file removed")
	}
	rec, _ := st.Read("web")
	if rec.PID != nil || rec.StartedAt != nil {
		t.Fatalf("expected state cleared after stopping stale pid: %+v", rec)
	}
}

func TestAliveRejectsNonPositive(t *testing.T) {
	if Alive(0) || Alive(-5) {
		t.Fatalf("expected non-positive pids to be reported dead")
	}
}

func TestAliveOfCurrentProcess(t *testing.T) {
	if !Alive(os.Getpid()) {
		t.Fatalf("expected current process to be alive")
	}
}

func TestPGroupSignalingStopsDescendants(t *testing.T) {
	c, _, _ := newTestController(t)
	// A child that forks a grandchild via a shell; stopping must reach
	// both because they share the child's process group.
	svc := configstore.Service{Name: "tree", Cmd: "sh -c 'sleep 30 & wait'", Dir: t.TempDir()}
	if err := c.Start(svc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	pid, _, _ := c.PID("tree")
	pgid, err := syscall.Getpgid(pid)
	if err != nil {
		t.Fatalf("Getpgid: %v", err)
	}
	if err := c.Stop("tree"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// The whole group should be gone; signal(0) to the group should fail.
	if err := syscall.Kill(-pgid, 0); err == nil {
		t.Fatalf("expected process group %d to be gone after stop", pgid)
	}
}

func TestRestartClearsCrashLoopBeforeStopping(t *testing.T) {
	c, l, st := newTestController(t)
	d := crashloop.New(st, settings.Defaults())
	svc := configstore.Service{Name: "web", Cmd: "sleep 30", Dir: t.TempDir()}

	if err := c.Start(svc); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 6; i++ {
		_, _ = d.RecordRestart("web", int64(i))
	}
	looped, _ := d.IsCrashLooped("web")
	if !looped {
		t.Fatalf("expected crash loop engaged before restart")
	}

	if err := Restart(c, d, svc); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	looped, _ = d.IsCrashLooped("web")
	if looped {
		t.Fatalf("expected crash loop cleared after manual restart")
	}
	running, _ := c.IsRunning("web")
	if !running {
		t.Fatalf("expected service running after restart")
	}
	_ = c.Stop("web")
	_ = l
}
