package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
)

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop <name|all>",
		Short: "Stop a service, or every configured service",
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
			if args[0] != allMarker {
				if _, ok, err := d.Configs.Lookup(args[0]); err != nil {
					return exitcodes.FilesystemErrf("read services: %v", err)
				} else if !ok {
					return exitcodes.PreconditionErrorf("no service named %q", args[0])
				}
			}

			var firstErr error
			for _, name := range names {
				stopErr := withSpinner(fmt.Sprintf("stopping %s", name), func() error {
					return d.Ctrl.Stop(name)
				})
				if stopErr != nil {
					wrapped := exitcodes.WrapError(exitcodes.GeneralError, fmt.Sprintf("stop %s", name), stopErr)
					if args[0] != allMarker {
						return wrapped
					}
					d.Printer.Error(wrapped.Error())
					firstErr = wrapped
					continue
				}
				d.Printer.Success(fmt.Sprintf("stopped %s", name))
			}
			if args[0] == allMarker {
				return nil
			}
			return firstErr
		},
	}
}
