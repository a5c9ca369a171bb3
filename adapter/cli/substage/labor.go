package substage

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var laborCmd = &cobra.Command{
	Use:   "labor [substage-id] [amount]",
	Short: "Set the labor cost of a sub-stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		substageID, err := cli.ParseID(args[0], "sub-stage")
		if err != nil {
			return err
		}
		amount, err := cli.ParseAmount(args[1], "labor cost")
		if err != nil {
			return err
		}

		if err := app.SetLaborCost.Handle(cmd.Context(), commands.SetLaborCostCommand{
			SubstageID: substageID,
			LaborCost:  amount,
		}); err != nil {
			return fmt.Errorf("failed to set labor cost: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Labor cost set: %s -> %s\n", substageID, amount.StringFixed(2))
		return nil
	},
}
