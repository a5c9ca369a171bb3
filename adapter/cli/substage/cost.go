package substage

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/spf13/cobra"
)

var costCmd = &cobra.Command{
	Use:   "cost [substage-id]",
	Short: "Show the labor and material cost of a sub-stage",
	Long: `Show the cost of a sub-stage. Open work is priced at current material
prices; finished and paid work at the price in force on each usage date.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		substageID, err := cli.ParseID(args[0], "sub-stage")
		if err != nil {
			return err
		}

		cost, err := app.SubstageCost.Handle(cmd.Context(), queries.GetSubstageCostQuery{SubstageID: substageID})
		if err != nil {
			return fmt.Errorf("failed to cost sub-stage: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, cost)
		}
		pricing := "current prices"
		if cost.Frozen {
			pricing = "prices on usage date"
		}
		fmt.Fprintf(out, "%s / %s  [%s]  (%s)\n", cost.StageName, cost.Name, cost.Status, pricing)
		for _, line := range cost.Lines {
			fmt.Fprintf(out, "  %s  %-16s %10s %-6s x %10s = %12s\n",
				line.Date.Format(domain.DateLayout), line.Material, line.Quantity.String(), line.Unit,
				line.UnitPrice.StringFixed(2), line.Amount.StringFixed(2))
		}
		fmt.Fprintf(out, "  %-30s %12s\n", "materials", cost.Materials.StringFixed(2))
		fmt.Fprintf(out, "  %-30s %12s\n", "labor", cost.Labor.StringFixed(2))
		fmt.Fprintf(out, "  %-30s %12s\n", "total", cost.Total().StringFixed(2))
		return nil
	},
}
