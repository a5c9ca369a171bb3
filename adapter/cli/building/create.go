package building

import (
	"fmt"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/template"
	"github.com/spf13/cobra"
)

var (
	createTemplate string
	createDate     string
)

var createCmd = &cobra.Command{
	Use:   "create [project-id] [name]",
	Short: "Add a building to a project",
	Long: `Add a building built from a template of stages and sub-stages.
Without --template the built-in single-family house is used. Materials
named by the template must already exist.

Examples:
  sitework building create 6f1c... "House 1"
  sitework building create 6f1c... "Garage" --template garage.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		projectID, err := cli.ParseID(args[0], "project")
		if err != nil {
			return err
		}
		day, err := cli.ParseDay(createDate)
		if err != nil {
			return err
		}

		var tmpl domain.BuildingTemplate
		if createTemplate != "" {
			tmpl, err = template.Load(createTemplate)
			if err != nil {
				return err
			}
		} else {
			tmpl = template.Default()
		}

		result, err := app.CreateBuilding.Handle(cmd.Context(), commands.CreateBuildingCommand{
			ProjectID: projectID,
			Name:      args[1],
			Template:  tmpl,
			Today:     day,
		})
		if err != nil {
			return fmt.Errorf("failed to create building: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Building created: %s\n", result.BuildingID)
		fmt.Fprintf(out, "  name: %s\n", args[1])
		fmt.Fprintf(out, "  position: %d\n", result.Position)
		fmt.Fprintf(out, "  template: %s\n", tmpl.Name)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "YAML building template")
	createCmd.Flags().StringVar(&createDate, "date", "", "date for template material usage (YYYY-MM-DD)")
}
