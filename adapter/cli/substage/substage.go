package substage

import (
	"github.com/spf13/cobra"
)

// Cmd is the sub-stage command group
var Cmd = &cobra.Command{
	Use:     "substage",
	Aliases: []string{"sub"},
	Short:   "Move sub-stages through their workflow and record costs",
}

func init() {
	Cmd.AddCommand(startCmd)
	Cmd.AddCommand(finishCmd)
	Cmd.AddCommand(resetCmd)
	Cmd.AddCommand(laborCmd)
	Cmd.AddCommand(useMaterialCmd)
	Cmd.AddCommand(costCmd)
}
