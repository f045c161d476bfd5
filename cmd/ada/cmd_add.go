package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/configstore"
	"github.com/ada-cli/ada/internal/exitcodes"
	"github.com/ada-cli/ada/internal/paths"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <cmd> <dir> [env_file]",
		Short: "Declare a new service",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			name, cmdLine, dir := args[0], args[1], args[2]
			if !paths.ValidName(name) {
				return exitcodes.InvalidArgsErrorf("invalid service name %q", name)
			}
			if _, ok, err := d.Configs.Lookup(name); err != nil {
				return exitcodes.FilesystemErrf("read services: %v", err)
			} else if ok {
				return exitcodes.PreconditionErrorf("service %q already exists", name)
			}

			svc := configstore.Service{Name: name, Cmd: cmdLine, Dir: dir, Enabled: true}
			if len(args) == 4 {
				svc.EnvFile = args[3]
			}
			if err := d.Configs.Upsert(svc); err != nil {
				return exitcodes.FilesystemErrf("write services: %v", err)
			}
			d.Printer.Success(fmt.Sprintf("added %s", name))
			return nil
		},
	}
}
