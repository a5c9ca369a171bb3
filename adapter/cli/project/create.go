package project

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new project",
	Long: `Create an empty construction project.

Examples:
  sitework project create "Riverside Estate"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}

		result, err := app.CreateProject.Handle(cmd.Context(), commands.CreateProjectCommand{Name: args[0]})
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Project created: %s\n", result.ProjectID)
		fmt.Fprintf(out, "  name: %s\n", args[0])
		return nil
	},
}
