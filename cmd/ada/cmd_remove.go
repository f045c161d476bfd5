package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Stop and forget a service",
		Args:    cobra.ExactArgs(1),
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

			if !flagYes && flagOutput != "json" {
				if flagNonInteractive {
					return exitcodes.InvalidArgsError("remove requires confirmation: use --yes in non-interactive mode")
				}
				resp, err := d.Prompter.ReadLine(fmt.Sprintf("Remove %q? (y/N): ", name))
				if err != nil || strings.ToLower(strings.TrimSpace(resp)) != "y" {
					d.Printer.Info("remove cancelled")
					return nil
				}
			}

			if err := d.Ctrl.Stop(name); err != nil {
				return exitcodes.WrapError(exitcodes.GeneralError, "stop before remove", err)
			}
			if err := d.Configs.Remove(name); err != nil {
				return exitcodes.FilesystemErrf("write services: %v", err)
			}
			_ = os.Remove(d.Layout.StateFile(name))
			_ = os.Remove(d.Layout.PidFile(name))

			d.Printer.Success(fmt.Sprintf("removed %s", name))
			return nil
		},
	}
}
