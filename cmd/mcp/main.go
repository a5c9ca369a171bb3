// Command sitework-mcp serves the construction tools to MCP clients.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/app"
	mcpserver "github.com/felixgeelhaar/sitework/internal/mcp"
	"github.com/felixgeelhaar/sitework/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "sitework-mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg, "sitework-mcp")

	container, err := app.NewContainer(ctx, cfg, logger, nil)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer func() { _ = container.Close() }()

	err = mcpserver.Serve(ctx, cfg, cli.NewApp(container), logger, container.Metrics)
	if errors.Is(err, context.Canceled) {
		logger.Info("mcp server stopped")
		return nil
	}
	return err
}
