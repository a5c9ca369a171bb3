package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	mcpinternal "github.com/felixgeelhaar/sitework/internal/mcp"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the construction tools over MCP streamable HTTP. Requests need
a bearer token when MCP_AUTH_TOKEN is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return cli.ErrNotInitialized
		}
		cfg := *container.Config
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		err := mcpinternal.Serve(cmd.Context(), &cfg, cli.NewApp(container), container.Logger, container.Metrics)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides MCP_ADDR")
}
