package building

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [building-id]",
	Short: "Delete a building without paid work",
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

		if err := app.DeleteBuilding.Handle(cmd.Context(), commands.DeleteBuildingCommand{BuildingID: buildingID}); err != nil {
			return fmt.Errorf("failed to delete building: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Building deleted: %s\n", buildingID)
		return nil
	},
}
