package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/adapter/cli/building"
	"github.com/felixgeelhaar/sitework/adapter/cli/material"
	"github.com/felixgeelhaar/sitework/adapter/cli/mcp"
	"github.com/felixgeelhaar/sitework/adapter/cli/project"
	"github.com/felixgeelhaar/sitework/adapter/cli/substage"
	"github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/pkg/config"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg, "sitework")
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger, nil)
	if err != nil {
		// version and help still work; data commands report ErrNotInitialized
		logger.Error("failed to initialize container", "error", err)
	} else {
		defer func() { _ = container.Close() }()
		cli.SetApp(cli.NewApp(container))
		mcp.SetContainer(container)
	}

	cli.AddCommand(project.Cmd)
	cli.AddCommand(building.Cmd)
	cli.AddCommand(substage.Cmd)
	cli.AddCommand(material.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.ExecuteContext(ctx)
}
