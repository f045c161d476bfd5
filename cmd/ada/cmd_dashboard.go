package main

import (
	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/dashboard"
	"github.com/ada-cli/ada/internal/exitcodes"
	ui "github.com/ada-cli/ada/internal/ui"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"d"},
		Short:   "Live-updating table view of every configured service",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps()
			if err != nil {
				return err
			}
			// Bubbletea/lipgloss query the terminal's background
			// color on first use; without this the response can leak
			// into the table's first frame.
			ui.InitTerminal()
			program := dashboard.New(d.Reader)
			_, runErr := program.Run()
			ui.ResetTerminalAfterTUI()
			if runErr != nil {
				return exitcodes.WrapError(exitcodes.GeneralError, "dashboard", runErr)
			}
			return nil
		},
	}
}
