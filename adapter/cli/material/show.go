package material

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [material]",
	Short: "Show a material and its price history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}

		material, err := app.ResolveMaterial(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to find material %q: %w", args[0], err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, material)
		}
		fmt.Fprintf(out, "%s (%s)  current: %s\n", material.Name, material.Unit, material.CurrentPrice.StringFixed(2))
		fmt.Fprintf(out, "  id: %s\n", material.ID)
		for _, p := range material.History {
			end := "open"
			if p.EndDate != nil {
				end = p.EndDate.Format(domain.DateLayout)
			}
			fmt.Fprintf(out, "  %s -> %-10s %12s\n", p.StartDate.Format(domain.DateLayout), end, p.PricePerUnit.StringFixed(2))
		}
		return nil
	},
}
