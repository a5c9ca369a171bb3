package building

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var stopDate string

var stopCmd = &cobra.Command{
	Use:   "stop [building-id]",
	Short: "Stop all open work on a building",
	Long: `Stop a building. Sub-stages that are not started or ongoing become
stopped; finished and paid work is kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		buildingID, err := cli.ParseID(args[0], "building")
		if err != nil {
			return err
		}
		day, err := cli.ParseDay(stopDate)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := app.StopBuilding.Handle(ctx, commands.StopBuildingCommand{
			BuildingID:    buildingID,
			Today:         day,
			CorrelationID: cli.CorrelationID(ctx),
		}); err != nil {
			return fmt.Errorf("failed to stop building: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Building stopped: %s\n", buildingID)
		return nil
	},
}

func init() {
	stopCmd.Flags().StringVar(&stopDate, "date", "", "stop date (YYYY-MM-DD), defaults to today")
}
