package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
	"github.com/ada-cli/ada/internal/process"
)

func newRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart <name|all>",
		Short: "Stop then start a service (or every service), clearing crash-loop first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			names, err := serviceNames(d, args[0], false)
			if err != nil {
				return err
			}

			var firstErr error
			for _, name := range names {
				svc, ok, err := d.Configs.Lookup(name)
				if err != nil {
					return exitcodes.FilesystemErrf("read services: %v", err)
				}
				if !ok {
					wrapped := exitcodes.PreconditionErrorf("no service named %q", name)
					if args[0] != allMarker {
						return wrapped
					}
					d.Printer.Error(wrapped.Error())
					firstErr = wrapped
					continue
				}
				restartErr := withSpinner(fmt.Sprintf("restarting %s", name), func() error {
					return process.Restart(d.Ctrl, d.Detector, svc)
				})
				if restartErr != nil {
					wrapped := exitcodes.SpawnErrf("restart %s: %v", name, restartErr)
					if args[0] != allMarker {
						return wrapped
					}
					d.Printer.Error(wrapped.Error())
					firstErr = wrapped
					continue
				}
				d.Printer.Success(fmt.Sprintf("restarted %s", name))
			}
			if args[0] == allMarker {
				return nil
			}
			return firstErr
		},
	}
}
