package project

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}

		projects, err := app.ListProjects.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, projects)
		}
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects yet. Create one with: sitework project create <name>")
			return nil
		}
		for _, p := range projects {
			fmt.Fprintf(out, "%s  %-30s %3d%%  %d building(s)\n", p.ID, p.Name, p.Percent, len(p.Buildings))
		}
		return nil
	},
}
