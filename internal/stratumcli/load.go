package stratumcli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load <class> <dir> [dir...]",
	Short: "Load a class by name through the layered resolver and print its byte length",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		className, dirs := args[0], args[1:]
		eng, loader, err := buildEngine(cmd.Context(), dirs)
		if err != nil {
			return err
		}
		defer eng.Close()

		bc, err := eng.LoadClass(loader, className)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes\n", bc.ClassName(), len(bc.Bytes()))
		return nil
	},
}
