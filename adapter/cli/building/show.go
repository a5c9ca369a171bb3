package building

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [building-id]",
	Short: "Show the stage and sub-stage progress of a building",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		buildingID, err := cli.ParseID(args[0], "building")
		if err != nil {
			return err
		}

		progress, err := app.BuildingProgress.Handle(cmd.Context(), queries.GetBuildingProgressQuery{BuildingID: buildingID})
		if err != nil {
			return fmt.Errorf("failed to load building: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, progress)
		}
		cli.PrintBuildingProgress(out, progress)
		return nil
	},
}
