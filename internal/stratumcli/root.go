// Package stratumcli implements stratumctl, a small demonstration CLI that
// loads directories of files as layers and resolves classes through a
// stratum.Engine. It exists to exercise the engine from outside its test
// suite, not as a production tool.
package stratumcli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stratumctl",
	Short: "Inspect a stratum layered code cache from the command line",
	Long: `stratumctl loads one or more directories as layers on a stratum engine,
treating each file as a class named after its base name, and lets you
inspect the resulting resolution order or load a class by name.`,
}

// Execute runs the CLI, returning any error from the selected subcommand.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(layersCmd, loadCmd)
}
