package building

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List the buildings of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		projectID, err := cli.ParseID(args[0], "project")
		if err != nil {
			return err
		}

		buildings, err := app.ListBuildings.Handle(cmd.Context(), queries.ListBuildingsQuery{ProjectID: projectID})
		if err != nil {
			return fmt.Errorf("failed to list buildings: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, buildings)
		}
		for _, b := range buildings {
			fmt.Fprintf(out, "#%d %-28s %-12s %3d%%  %s\n", b.Position, b.Name, b.Status, b.Percent, b.ID)
		}
		return nil
	},
}
