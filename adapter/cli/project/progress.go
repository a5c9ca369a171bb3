package project

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress [project-id]",
	Short: "Show the progress of a project and its buildings",
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

		project, err := app.ProjectProgress.Handle(cmd.Context(), queries.GetProjectProgressQuery{ProjectID: projectID})
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, project)
		}
		fmt.Fprintf(out, "%s  %d%%\n", project.Name, project.Percent)
		for _, b := range project.Buildings {
			fmt.Fprintf(out, "  #%d %-28s %-12s %3d%%  %s\n", b.Position, b.Name, b.Status, b.Percent, b.ID)
		}
		return nil
	},
}
