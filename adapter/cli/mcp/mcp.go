package mcp

import (
	"github.com/felixgeelhaar/sitework/internal/app"
	"github.com/spf13/cobra"
)

// Cmd is the MCP command group.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Manage the sitework MCP interface",
}

var container *app.Container

// SetContainer hands the process container to the serve command.
func SetContainer(c *app.Container) {
	container = c
}

func init() {
	Cmd.AddCommand(serveCmd)
}
