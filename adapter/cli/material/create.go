package material

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var createEffective string

var createCmd = &cobra.Command{
	Use:   "create [name] [unit] [price]",
	Short: "Add a material with its first price",
	Long: `Add a material to the catalog.

Examples:
  sitework material create Cement bag 8.50
  sitework material create Rebar kg 1.20 --effective 2024-01-01`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		price, err := cli.ParseAmount(args[2], "price")
		if err != nil {
			return err
		}
		effective, err := cli.ParseDay(createEffective)
		if err != nil {
			return err
		}

		result, err := app.CreateMaterial.Handle(cmd.Context(), commands.CreateMaterialCommand{
			Name:          args[0],
			Unit:          args[1],
			Price:         price,
			EffectiveDate: effective,
		})
		if err != nil {
			return fmt.Errorf("failed to create material: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Material created: %s\n", args[0])
		fmt.Fprintf(out, "  id: %s\n", result.MaterialID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createEffective, "effective", "", "date the price applies from (YYYY-MM-DD), defaults to today")
}
