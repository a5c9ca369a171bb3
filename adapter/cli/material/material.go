package material

import (
	"github.com/spf13/cobra"
)

// Cmd is the material command group
var Cmd = &cobra.Command{
	Use:   "material",
	Short: "Manage the material catalog and its prices",
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(priceCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(listCmd)
}
