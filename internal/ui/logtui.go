package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nxadm/tail"
	"golang.org/x/term"
)

// LogUIOptions configures the interactive log viewer.
type LogUIOptions struct {
	LogPath    string // path to the service's log file
	ShowFooter bool   // enable the raw-mode viewer with its exit hint; false falls back to plain tail
	NoColor    bool   // respect --no-color
}

// RunLogUI starts the interactive "logs -f" viewer, which prints a
// one-time exit hint above the streamed lines (it is not redrawn as
// output scrolls). Ctrl+C or 'q' exits the viewer; it never affects the
// service being followed. Automatically falls back to a plain tail
// for non-TTY environments.
func RunLogUI(ctx context.Context, opts LogUIOptions) error {
	debug := os.Getenv("DEBUG_TUI") != ""

	stdin := int(os.Stdin.Fd())
	stdout := int(os.Stdout.Fd())
	stdinTTY := term.IsTerminal(stdin)
	stdoutTTY := term.IsTerminal(stdout)

	if !stdinTTY || !stdoutTTY || !opts.ShowFooter {
		if debug {
			fmt.Fprintf(os.Stderr, "[DEBUG] TUI fallback: stdin_tty=%v stdout_tty=%v footer=%v\n",
				stdinTTY, stdoutTTY, opts.ShowFooter)
		}
		return tailFollow(ctx, opts.LogPath)
	}

	rows, cols, err := term.GetSize(stdout)
	if err != nil || rows < 5 || cols < 20 {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot detect terminal size: %v; showing plain logs.\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Terminal too small for TUI (rows=%d cols=%d, need 5x20+); showing plain logs.\n", rows, cols)
		}
		return tailFollow(ctx, opts.LogPath)
	}

	if debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] TUI mode activating: terminal=%dx%d\n", cols, rows)
	}

	oldState, err := term.MakeRaw(stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Cannot enable TUI mode; showing plain logs.")
		return tailFollow(ctx, opts.LogPath)
	}

	defer func() {
		term.Restore(stdin, oldState)
		fmt.Fprint(os.Stdout, "\x1b[?7h")
	}()

	fmt.Fprint(os.Stdout, "\x1b[?7l")

	fmt.Fprint(os.Stdout, "\r\n")
	fmt.Fprint(os.Stdout, "following log — press Ctrl+C or 'q' to exit\r\n")
	fmt.Fprint(os.Stdout, strings.Repeat("-", min(cols, 80))+"\r\n")
	fmt.Fprint(os.Stdout, "\r\n")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for range sigCh {
			cancel()
		}
	}()

	logErr := make(chan error, 1)
	go func() {
		logErr <- streamLogs(ctx, opts.LogPath, os.Stdout)
	}()

	keyCh := listenKeys(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err := <-logErr:
			if err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stdout, "\r\nlog streaming error: %v\r\n", err)
				time.Sleep(1 * time.Second)
			}
			return err

		case key := <-keyCh:
			switch key {
			case 3, 'q': // Ctrl+C or 'q' — exit the viewer only
				fmt.Fprint(os.Stdout, "\r\n")
				return nil
			}
		}
	}
}

// listenKeys reads keypresses from stdin with debouncing.
func listenKeys(ctx context.Context) <-chan byte {
	keyCh := make(chan byte, 16)
	go func() {
		defer close(keyCh)
		buf := make([]byte, 1)
		lastKey := time.Now()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}

			if buf[0] == 3 {
				keyCh <- buf[0]
				continue
			}

			if time.Since(lastKey) < 150*time.Millisecond {
				continue
			}
			lastKey = time.Now()

			keyCh <- buf[0]
		}
	}()
	return keyCh
}

// streamLogs follows the log file with rotation support via
// github.com/nxadm/tail.
func streamLogs(ctx context.Context, logPath string, out io.Writer) error {
	for i := 0; i < 50; i++ {
		if _, err := os.Stat(logPath); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	t, err := tail.TailFile(logPath, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: false,
		Poll:      false,
	})
	if err != nil {
		return fmt.Errorf("failed to tail log: %w", err)
	}
	defer t.Cleanup()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-t.Lines:
			if line == nil {
				return nil
			}
			if line.Err != nil {
				return line.Err
			}
			fmt.Fprintf(out, "%s\r\n", line.Text)
		}
	}
}

// tailFollow is a simple fallback for non-TTY environments: it shells
// out to tail with -F/-f fallback for portability.
func tailFollow(ctx context.Context, logPath string) error {
	cmd := exec.CommandContext(ctx, "tail", "-F", logPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		cmd = exec.CommandContext(ctx, "tail", "-f", logPath)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
	return nil
}

// min returns the smaller of two integers.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
