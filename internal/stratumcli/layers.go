package stratumcli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var layersCmd = &cobra.Command{
	Use:   "layers <dir> [dir...]",
	Short: "Compile each directory into a layer and print its class names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, loader, err := buildEngine(cmd.Context(), args)
		if err != nil {
			return err
		}
		defer eng.Close()

		for i, layer := range loader.Resolver().Layers() {
			fmt.Fprintf(cmd.OutOrStdout(), "layer %d (%s):\n", i, args[i])
			for _, name := range layer.ClassNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
		}
		return nil
	},
}
