package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/crashloop"
	"github.com/ada-cli/ada/internal/events"
	"github.com/ada-cli/ada/internal/paths"
	"github.com/ada-cli/ada/internal/process"
	"github.com/ada-cli/ada/internal/settings"
	"github.com/ada-cli/ada/internal/state"
	"github.com/ada-cli/ada/internal/status"
	ui "github.com/ada-cli/ada/internal/ui"
)

// Prompter abstracts interactive terminal I/O for testability.
type Prompter interface {
	ReadLine(prompt string) (string, error)
	IsInteractive() bool
}

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Layout   paths.Layout
	Configs  *configstore.Store
	States   *state.Store
	Settings settings.Settings
	Ctrl     *process.Controller
	Detector *crashloop.Detector
	Reader   *status.Reader
	Bus      *events.Bus
	Printer  ui.Printer
	Prompter Prompter
}

// ttyPrompter is the production implementation of Prompter. It uses
// /dev/tty when stdin is not a terminal (e.g., piped input).
type ttyPrompter struct{}

func (p *ttyPrompter) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)

	var reader *bufio.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		reader = bufio.NewReader(os.Stdin)
	} else {
		tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			return "", fmt.Errorf("no interactive terminal available: %w", err)
		}
		defer tty.Close()
		reader = bufio.NewReader(tty)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ttyPrompter) IsInteractive() bool {
	if flagNonInteractive {
		return false
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err == nil {
		tty.Close()
		return true
	}
	return false
}

// newDeps wires production dependencies rooted at the resolved ada
// home directory, creating it on disk if necessary.
func newDeps() (*Deps, error) {
	l, err := paths.New(flagAdaHome)
	if err != nil {
		return nil, fmt.Errorf("resolve ada home: %w", err)
	}
	if err := l.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("prepare ada home: %w", err)
	}

	s, warnings := settings.Load(l)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	configs := configstore.New(l)
	states := state.New(l)
	ctrl := process.New(l, states, s)
	det := crashloop.New(states, s)
	bus := events.New()
	reader := status.New(ctrl, configs, states, det, l)

	return &Deps{
		Layout:   l,
		Configs:  configs,
		States:   states,
		Settings: s,
		Ctrl:     ctrl,
		Detector: det,
		Reader:   reader,
		Bus:      bus,
		Printer:  ui.NewPrinterFromGlobal(flagOutput),
		Prompter: &ttyPrompter{},
	}, nil
}
