package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <name|all>",
		Short: "Start a service, or every enabled service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			names, err := serviceNames(d, args[0], true)
			if err != nil {
				return err
			}
			if len(names) == 0 && args[0] == allMarker {
				d.Printer.Info("no enabled services to start")
				return nil
			}

			var firstErr error
			for _, name := range names {
				svc, ok, err := d.Configs.Lookup(name)
				if err != nil {
					return exitcodes.FilesystemErrf("read services: %v", err)
				}
				if !ok {
					err := exitcodes.PreconditionErrorf("no service named %q", name)
					if args[0] != allMarker {
						return err
					}
					d.Printer.Error(err.Error())
					firstErr = err
					continue
				}
				if err := d.Ctrl.Start(svc); err != nil {
					wrapped := exitcodes.SpawnErrf("start %s: %v", name, err)
					if args[0] != allMarker {
						return wrapped
					}
					d.Printer.Error(wrapped.Error())
					firstErr = wrapped
					continue
				}
				d.Printer.Success(fmt.Sprintf("started %s", name))
			}
			if args[0] == allMarker {
				return nil
			}
			return firstErr
		},
	}
}
