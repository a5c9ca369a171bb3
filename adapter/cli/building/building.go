package building

import (
	"github.com/spf13/cobra"
)

// Cmd is the building command group
var Cmd = &cobra.Command{
	Use:   "building",
	Short: "Manage buildings",
	Long:  `Add buildings to a project from a template, inspect their progress and stop work.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(stopCmd)
	Cmd.AddCommand(deleteCmd)
}
