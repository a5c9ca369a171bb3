package material

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all materials with their current price",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}

		materials, err := app.ListMaterials.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list materials: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, materials)
		}
		if len(materials) == 0 {
			fmt.Fprintln(out, "No materials yet")
			return nil
		}
		for _, m := range materials {
			fmt.Fprintf(out, "%-24s %-6s %12s  %s\n", m.Name, m.Unit, m.CurrentPrice.StringFixed(2), m.ID)
		}
		return nil
	},
}
