package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
	ui "github.com/ada-cli/ada/internal/ui"
)

func newLogsCmd() *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs <name>",
		Short: "Show or follow a service's log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			name := args[0]
			if _, ok, err := d.Configs.Lookup(name); err != nil {
				return exitcodes.FilesystemErrf("read services: %v", err)
			} else if !ok {
				return exitcodes.PreconditionErrorf("no service named %q", name)
			}

			logPath := d.Layout.LogFile(name)

			if cmd.Flags().Changed("lines") {
				return printTail(logPath, lines)
			}
			if !follow {
				return printTail(logPath, 0)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return ui.RunLogUI(ctx, ui.LogUIOptions{LogPath: logPath, ShowFooter: true, NoColor: flagNoColor})
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Print the last N lines and exit, instead of following")
	cmd.Flags().BoolVarP(&follow, "follow", "f", true, "Follow the log (default)")
	return cmd
}

// printTail prints the last n lines of path (or the whole file if n
// is 0) and returns, without following.
func printTail(path string, n int) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("(no log yet)")
			return nil
		}
		return exitcodes.FilesystemErrf("open log: %v", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		fmt.Printf("%s (%s)\n", ui.ShortenPath(path), ui.FormatBytes(info.Size()))
	}

	if n <= 0 {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
		return nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	buf := make([]string, 0, n)
	for scanner.Scan() {
		buf = append(buf, scanner.Text())
		if len(buf) > n {
			buf = buf[1:]
		}
	}
	for _, line := range buf {
		fmt.Println(line)
	}
	return nil
}
