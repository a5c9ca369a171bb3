package substage

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var (
	useNotes string
	useDate  string
)

var useMaterialCmd = &cobra.Command{
	Use:   "use-material [substage-id] [material] [quantity]",
	Short: "Record material used on a sub-stage",
	Long: `Record a quantity of material used on a sub-stage. The material is
given by ID or name.

Examples:
  sitework substage use-material 9b2e... Cement 12.5 --notes "east wall"`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		substageID, err := cli.ParseID(args[0], "sub-stage")
		if err != nil {
			return err
		}
		quantity, err := cli.ParseAmount(args[2], "quantity")
		if err != nil {
			return err
		}
		day, err := cli.ParseDay(useDate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		material, err := app.ResolveMaterial(ctx, args[1])
		if err != nil {
			return fmt.Errorf("failed to find material %q: %w", args[1], err)
		}

		result, err := app.RecordUsage.Handle(ctx, commands.RecordMaterialUsageCommand{
			SubstageID: substageID,
			MaterialID: material.ID,
			Quantity:   quantity,
			Notes:      useNotes,
			Today:      day,
		})
		if err != nil {
			return fmt.Errorf("failed to record material usage: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Usage recorded: %s\n", result.UsageID)
		fmt.Fprintf(out, "  %s %s %s\n", quantity.String(), material.Unit, material.Name)
		return nil
	},
}

func init() {
	useMaterialCmd.Flags().StringVarP(&useNotes, "notes", "n", "", "free-form notes")
	useMaterialCmd.Flags().StringVar(&useDate, "date", "", "usage date (YYYY-MM-DD), defaults to today")
}
