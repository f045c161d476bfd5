package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
)

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Stop a service and mark it disabled so the watcher ignores it",
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

			stopErr := withSpinner(fmt.Sprintf("stopping %s", name), func() error {
				return d.Ctrl.Stop(name)
			})
			if stopErr != nil {
				return exitcodes.WrapError(exitcodes.GeneralError, "stop before disable", stopErr)
			}
			found, err := d.Configs.SetEnabled(name, false)
			if err != nil {
				return exitcodes.FilesystemErrf("write services: %v", err)
			}
			if !found {
				return exitcodes.PreconditionErrorf("no service named %q", name)
			}
			d.Printer.Success(fmt.Sprintf("disabled %s", name))
			return nil
		},
	}
}
