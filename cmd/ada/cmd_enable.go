package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
)

func newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Mark a service as enabled so the watcher will auto-restart it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			name := args[0]
			found, err := d.Configs.SetEnabled(name, true)
			if err != nil {
				return exitcodes.FilesystemErrf("write services: %v", err)
			}
			if !found {
				return exitcodes.PreconditionErrorf("no service named %q", name)
			}
			d.Printer.Success(fmt.Sprintf("enabled %s", name))
			return nil
		},
	}
}
