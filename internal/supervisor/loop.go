// Package supervisor is the long-lived background loop started by
// "ada watch": a single-instance, sequential poller that reloads the
// service list every iteration and auto-restarts enabled services
// that have been started at least once but are no longer running,
// deferring to the crash-loop detector before ever relaunching.
package supervisor

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/crashloop"
	"github.com/ada-cli/ada/internal/events"
	"github.com/ada-cli/ada/internal/logstore"
	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/process"
	"github.com/ada-cli/ada/internal/settings"
	"github.com/ada-cli/ada/internal/state"
	"github.com/ada-cli/ada/internal/status"
)

// Supervisor owns one poll loop over the services declared under a
// single ada home directory.
type Supervisor struct {
	layout   paths.Layout
	configs  *configstore.Store
	states   *state.Store
	ctrl     *process.Controller
	detector *crashloop.Detector
	settings settings.Settings
	bus      *events.Bus
	logger   *log.Logger

	// interval is overridable by tests so the loop does not need to
	// wait wall-clock seconds between iterations.
	interval time.Duration

	// lastFingerprint is the config file's xxhash digest as of the
	// previous iteration, used only to log when the on-disk file
	// actually changed between polls; it has no bearing on the fixed
	// reload-every-iteration cadence.
	lastFingerprint uint64
	haveFingerprint bool
}

// New wires a Supervisor from the shared components. logFile is the
// supervisor's own diagnostic log (layout.SupervisorLogFile()).
func New(l paths.Layout, configs *configstore.Store, states *state.Store, ctrl *process.Controller, detector *crashloop.Detector, s settings.Settings, bus *events.Bus, logFile *os.File) *Supervisor {
	return &Supervisor{
		layout:   l,
		configs:  configs,
		states:   states,
		ctrl:     ctrl,
		detector: detector,
		settings: s,
		bus:      bus,
		logger:   log.New(logFile, "", log.LstdFlags),
		interval: s.WatchInterval,
	}
}

// Run acquires the single-instance lock, installs SIGINT/SIGTERM
// handlers that release it and return cleanly, and executes the poll
// loop until ctx is canceled or a signal arrives. The lock is always
// released before Run returns.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := AcquireLock(s.layout); err != nil {
		return err
	}
	defer ReleaseLock(s.layout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	watcher, werr := fsnotify.NewWatcher()
	if werr == nil {
		defer watcher.Close()
		if aerr := watcher.Add(s.layout.Root); aerr != nil {
			s.logger.Printf("config watch unavailable: %v", aerr)
		}
	} else {
		s.logger.Printf("config watch unavailable: %v", werr)
	}

	s.logger.Printf("supervisor started (pid %d)", os.Getpid())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.runIteration()

		for drained := false; !drained; {
			select {
			case <-ctx.Done():
				s.logger.Printf("supervisor stopping: %v", ctx.Err())
				return nil
			case sig := <-sigCh:
				s.logger.Printf("supervisor stopping on signal %v", sig)
				return nil
			case ev, ok := <-watcherEvents(watcher):
				if ok && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 && ev.Name == s.layout.ConfigFile() {
					s.logger.Printf("config change detected, applying next poll")
				}
			case <-ticker.C:
				drained = true
			}
		}
	}
}

// logConfigChange compares the config file's current xxhash digest
// against the one observed on the previous iteration and logs a
// diagnostic line when it changed. This is purely observational: it
// runs after the file has already been reloaded via s.configs.List(),
// so it never gates or delays that reload.
func (s *Supervisor) logConfigChange() {
	fp, err := s.configs.Fingerprint()
	if err != nil {
		return
	}
	if s.haveFingerprint && fp != s.lastFingerprint {
		s.logger.Printf("config changed (fingerprint %x -> %x)", s.lastFingerprint, fp)
	}
	s.lastFingerprint = fp
	s.haveFingerprint = true
}

// watcherEvents returns w's Events channel, or nil if w is nil; a nil
// channel blocks forever in a select, which is exactly the desired
// behavior when fsnotify is unavailable.
func watcherEvents(w *fsnotify.Watcher) chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

// runIteration executes one full poll: reload config, walk enabled
// services, apply the auto-restart decision per service, then rotate
// every service's log. It never returns an error; all failures are
// logged and the loop continues.
func (s *Supervisor) runIteration() {
	services, err := s.configs.List()
	if err != nil {
		s.logger.Printf("config unavailable, skipping this iteration: %v", err)
		return
	}
	s.logConfigChange()

	now := time.Now().Unix()
	for _, svc := range services {
		if !svc.Enabled {
			continue
		}
		s.considerRestart(svc, now)
	}

	for _, svc := range services {
		rotator := logstore.New(s.layout.LogFile(svc.Name), s.settings.MaxLogBytes)
		if err := rotator.RotateIfNeeded(); err != nil {
			s.logger.Printf("log rotation failed for %s: %v", svc.Name, err)
		}
	}
}

// considerRestart implements spec step 3: skip crash-looped, skip
// never-started (no bootstrap), skip already-running, else record the
// restart attempt, re-check crash-loop, and start or skip accordingly.
func (s *Supervisor) considerRestart(svc configstore.Service, now int64) {
	looped, err := s.detector.IsCrashLooped(svc.Name)
	if err != nil {
		s.logger.Printf("%s: reading crash-loop state failed: %v", svc.Name, err)
		return
	}
	if looped {
		return
	}

	rec, err := s.states.Read(svc.Name)
	if err != nil {
		s.logger.Printf("%s: reading state failed: %v", svc.Name, err)
		return
	}
	if rec.PID == nil && rec.StartedAt == nil {
		return
	}

	running, err := s.ctrl.IsRunning(svc.Name)
	if err != nil {
		s.logger.Printf("%s: liveness check failed: %v", svc.Name, err)
		return
	}
	if running {
		return
	}

	s.logger.Printf("auto-restart: %s", svc.Name)
	s.bus.Publish(events.Event{Time: time.Now(), Service: svc.Name, Kind: events.AutoRestart})

	if _, err := s.detector.RecordRestart(svc.Name, now); err != nil {
		s.logger.Printf("%s: recording restart failed: %v", svc.Name, err)
		return
	}

	looped, err = s.detector.IsCrashLooped(svc.Name)
	if err != nil {
		s.logger.Printf("%s: reading crash-loop state failed: %v", svc.Name, err)
		return
	}
	if looped {
		last := status.LastMeaningfulLine(s.layout.LogFile(svc.Name), 20, 200)
		s.logger.Printf("crash-loop entered: %s (last log line: %s)", svc.Name, last)
		s.bus.Publish(events.Event{Time: time.Now(), Service: svc.Name, Kind: events.CrashLoopEntered, Detail: last})
		s.bus.Publish(events.Event{Time: time.Now(), Service: svc.Name, Kind: events.AutoRestartSkipped, Detail: "crash loop"})
		return
	}

	if err := s.ctrl.Start(svc); err != nil {
		s.logger.Printf("%s: auto-restart failed: %v", svc.Name, err)
		return
	}
	s.bus.Publish(events.Event{Time: time.Now(), Service: svc.Name, Kind: events.Started, Detail: "auto-restart"})
}
