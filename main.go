package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tessel-lang/tessel/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "tessel [subcommand]",
	Short:        "tessel\n developer tools for the tessel frontend",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.ApplyDumpCmd)
}
