package main

import (
	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st", "s"},
	Short:   "Show the status of every configured service",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		entries, err := d.Reader.All()
		if err != nil {
			return exitcodes.FilesystemErrf("read status: %v", err)
		}
		printStatusTable(d, entries)
		return nil
	},
}

func newStatusCmd() *cobra.Command { return statusCmd }
