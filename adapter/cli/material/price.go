package material

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var priceEffective string

var priceCmd = &cobra.Command{
	Use:   "price [material] [price]",
	Short: "Record a new price for a material",
	Long: `Record a new price for a material given by ID or name. The previous
price is closed the day before the new one takes effect.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		price, err := cli.ParseAmount(args[1], "price")
		if err != nil {
			return err
		}
		effective, err := cli.ParseDay(priceEffective)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		material, err := app.ResolveMaterial(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to find material %q: %w", args[0], err)
		}

		if err := app.RecordMaterialPrice.Handle(ctx, commands.RecordMaterialPriceCommand{
			MaterialID:    material.ID,
			Price:         price,
			EffectiveDate: effective,
		}); err != nil {
			return fmt.Errorf("failed to record price: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Price recorded: %s %s per %s\n", material.Name, price.StringFixed(2), material.Unit)
		return nil
	},
}

func init() {
	priceCmd.Flags().StringVar(&priceEffective, "effective", "", "date the price applies from (YYYY-MM-DD), defaults to today")
}
