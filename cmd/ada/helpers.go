package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/ada-cli/ada/internal/exitcodes"
	"github.com/ada-cli/ada/internal/status"
	ui "github.com/ada-cli/ada/internal/ui"
)

// allMarker is the sentinel positional argument meaning "every
// configured service" for start/stop/restart.
const allMarker = "all"

// printStatusTable renders entries as a status table or JSON array
// depending on --output.
func printStatusTable(d *Deps, entries []status.Entry) {
	if flagOutput == "json" {
		d.Printer.JSON(entries)
		return
	}
	if len(entries) == 0 {
		d.Printer.Info("no services configured")
		return
	}
	headers := []string{"NAME", "STATE", "PID", "UPTIME", "RESTARTS", "LAST LOG"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		pid := "-"
		if e.HasPID {
			pid = fmt.Sprintf("%d", e.PID)
		}
		uptime := e.Uptime
		if uptime == "" {
			uptime = "-"
		}
		rows = append(rows, []string{
			e.Name,
			string(e.State),
			pid,
			uptime,
			fmt.Sprintf("%d", e.RestartCount),
			e.LastLogLine,
		})
	}
	fmt.Print(ui.Table(d.Printer.Colors, headers, rows, nil))
}

// withSpinner runs fn, showing a spinner labeled label while it
// blocks, for commands that wait out a stop's SIGTERM/SIGKILL grace
// period or a restart's post-spawn liveness check. It drives the
// spinner's own ticker so fn never has to know it exists.
func withSpinner(label string, fn func() error) error {
	if flagOutput == "json" || flagNoColor || flagNonInteractive || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fn()
	}

	sp := ui.NewSpinner(os.Stdout, label)
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(sp.Delay())
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				sp.Tick()
			}
		}
	}()

	err := fn()
	close(done)
	sp.Clear()
	return err
}

// serviceNames resolves the "<name|all>" argument convention shared
// by start/stop/restart into a concrete list of service names.
func serviceNames(d *Deps, arg string, onlyEnabled bool) ([]string, error) {
	if arg != allMarker {
		return []string{arg}, nil
	}
	services, err := d.Configs.List()
	if err != nil {
		return nil, exitcodes.FilesystemErrf("read services: %v", err)
	}
	names := make([]string, 0, len(services))
	for _, svc := range services {
		if onlyEnabled && !svc.Enabled {
			continue
		}
		names = append(names, svc.Name)
	}
	return names, nil
}
