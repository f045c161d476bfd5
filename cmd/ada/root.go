package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ada-cli/ada/internal/exitcodes"
	ui "github.com/ada-cli/ada/internal/ui"
)

// Version information, set via -ldflags during build.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var (
	flagOutput         string
	flagNoColor        bool
	flagNoEmoji        bool
	flagAdaHome        string
	flagYes            bool
	flagNonInteractive bool
)

var rootCmd = &cobra.Command{
	Use:           "ada",
	Short:         "ada",
	Long:          "ada supervises a small set of personal long-running jobs: start, stop, restart, status, logs, and an optional background auto-restart watcher.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.InitGlobal(ui.Config{
			NoColor:        flagNoColor,
			NoEmoji:        flagNoEmoji,
			Yes:            flagYes,
			NonInteractive: flagNonInteractive,
		})
	},
	// Bare "ada" with no subcommand behaves like "ada status".
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "Output format: text|json")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable ANSI colors")
	rootCmd.PersistentFlags().BoolVar(&flagNoEmoji, "no-emoji", false, "Disable emoji output")
	rootCmd.PersistentFlags().StringVar(&flagAdaHome, "ada-home", "", "Override the ada home directory (default ~/.ada)")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Assume yes for confirmation prompts")
	rootCmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Fail instead of prompting")

	if v := os.Getenv("ADA_HOME"); v != "" && flagAdaHome == "" {
		flagAdaHome = v
	}

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newRestartCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newEnableCmd())
	rootCmd.AddCommand(newDisableCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ada version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ada %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			return nil
		},
	}
}

func run() int {
	if err := rootCmd.Execute(); err != nil {
		printErr(err)
		return exitcodes.CodeForError(err)
	}
	return exitcodes.Success
}

func printErr(err error) {
	if flagOutput == "json" {
		p := ui.NewPrinterFromGlobal(flagOutput)
		p.JSON(map[string]any{"ok": false, "error": err.Error()})
		return
	}
	ui.PrintError(errorMessageFor(err))
}
