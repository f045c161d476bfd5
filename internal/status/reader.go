// Package status derives each configured service's observable state
// by reconciling the on-disk PID record against what the OS actually
// reports, and formats that into the fields a status table or JSON
// snapshot needs.
package status

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/crashloop"
	"github.com/ada-cli/ada/internal/logstore"
	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/process"
	"github.com/ada-cli/ada/internal/state"
)

// State is the classification a service can be in.
type State string

const (
	Running   State = "running"
	Stopped   State = "stopped"
	Disabled  State = "disabled"
	CrashLoop State = "CRASH-LOOP"
)

// Entry is one row of the status view.
type Entry struct {
	Name         string
	PID          int
	HasPID       bool
	State        State
	Uptime       string
	RestartCount int
	LastLogLine  string
}

// Reader classifies services using a process Controller for liveness
// and PID-file reconciliation.
type Reader struct {
	ctrl     *process.Controller
	configs  *configstore.Store
	states   *state.Store
	crashDet *crashloop.Detector
	layout   paths.Layout
}

// New returns a Reader wired to the supervisor's shared components.
func New(ctrl *process.Controller, configs *configstore.Store, states *state.Store, crashDet *crashloop.Detector, layout paths.Layout) *Reader {
	return &Reader{ctrl: ctrl, configs: configs, states: states, crashDet: crashDet, layout: layout}
}

// All produces one Entry per configured service, in config order.
func (r *Reader) All() ([]Entry, error) {
	services, err := r.configs.List()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(services))
	for _, svc := range services {
		e, err := r.one(svc)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// One classifies a single named service, looking it up in the config
// first so an unknown name reports a clear error.
func (r *Reader) One(name string) (Entry, error) {
	svc, ok, err := r.configs.Lookup(name)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, fmt.Errorf("no service named %q", name)
	}
	return r.one(svc)
}

func (r *Reader) one(svc configstore.Service) (Entry, error) {
	e := Entry{Name: svc.Name}

	looped, err := r.crashDet.IsCrashLooped(svc.Name)
	if err != nil {
		return Entry{}, err
	}
	if looped {
		e.State = CrashLoop
	}

	rec, err := r.states.Read(svc.Name)
	if err != nil {
		return Entry{}, err
	}
	e.RestartCount = rec.RestartCount

	pid, ok, err := r.ctrl.PID(svc.Name)
	if err != nil {
		return Entry{}, err
	}
	if ok {
		e.PID = pid
		e.HasPID = true
		if e.State == "" {
			e.State = Running
		}
		if d, ok := r.ctrl.Uptime(svc.Name); ok {
			e.Uptime = FormatUptime(d)
		}
	} else if e.State == "" {
		if svc.Enabled {
			e.State = Stopped
		} else {
			e.State = Disabled
		}
	}

	e.LastLogLine = LastMeaningfulLine(r.layout.LogFile(svc.Name), 20, 120)
	return e, nil
}

// FormatUptime renders a duration per the documented buckets:
// "Xs" (<60s), "Xm Ys" (<1h), "Xh Ym" (<1d), "Xd Yh".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d.Seconds())
	switch {
	case total < 60:
		return fmt.Sprintf("%ds", total)
	case total < 3600:
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	case total < 86400:
		return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", total/86400, (total%86400)/3600)
	}
}

// LastMeaningfulLine returns the most recent non-blank, non-marker
// line from the last tailLines of path, truncated to width.
func LastMeaningfulLine(path string, tailLines, width int) string {
	lines := tailOf(path, tailLines)
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if line == "" || logstore.IsMarkerLine(line) {
			continue
		}
		if len(line) > width {
			return line[:width-1] + "…"
		}
		return line
	}
	return ""
}

// tailOf returns up to n trailing lines of path, or nil if it cannot
// be read.
func tailOf(path string, n int) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		buf = append(buf, scanner.Text())
		if len(buf) > n {
			buf = buf[1:]
		}
	}
	return buf
}
