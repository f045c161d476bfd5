// Package crashloop implements the sliding-window restart counter
// that guards the supervisor against endlessly relaunching a service
// that exits immediately. A sticky crash_loop flag, once set, is only
// cleared by an explicit recovery (a manual restart or removal).
package crashloop

import (
	"github.com/ada-cli/ada/internal/settings"
	"github.com/ada-cli/ada/internal/state"
)

// Detector mutates a service's restart history in the state store.
type Detector struct {
	store    *state.Store
	settings settings.Settings
}

// New returns a Detector bound to the given state store and tunables.
func New(store *state.Store, s settings.Settings) *Detector {
	return &Detector{store: store, settings: s}
}

// RecordRestart prunes restart_times to those still inside the
// crash-loop window, appends now, increments restart_count, and sets
// crash_loop once the pruned-and-appended count exceeds the
// threshold. now is the caller's Unix-seconds clock reading so the
// method itself makes no direct time syscalls, which keeps it
// deterministic under test.
func (d *Detector) RecordRestart(name string, now int64) (state.Record, error) {
	cutoff := now - int64(d.settings.CrashLoopWindow.Seconds())
	return d.store.Update(name, func(r *state.Record) {
		kept := r.RestartTimes[:0]
		for _, t := range r.RestartTimes {
			if t > cutoff {
				kept = append(kept, t)
			}
		}
		kept = append(kept, now)
		r.RestartTimes = kept
		r.RestartCount++
		if len(r.RestartTimes) > d.settings.CrashLoopThreshold {
			r.CrashLoop = true
		}
	})
}

// ClearCrashLoop resets the sticky flag and restart history. This is
// the only path that clears crash_loop; it is invoked by a manual
// "restart" command before the stop/start sequence runs, so a failed
// start still leaves the user a working recovery path.
func (d *Detector) ClearCrashLoop(name string) (state.Record, error) {
	return d.store.Update(name, func(r *state.Record) {
		r.CrashLoop = false
		r.RestartTimes = []int64{}
		r.RestartCount = 0
	})
}

// IsCrashLooped reports whether name is currently in a crash loop.
func (d *Detector) IsCrashLooped(name string) (bool, error) {
	rec, err := d.store.Read(name)
	if err != nil {
		return false, err
	}
	return rec.CrashLoop, nil
}
