// Package mcp exposes the construction engine to MCP clients over HTTP.
package mcp

import (
	"context"
	"errors"
	"log/slog"

	mcpgo "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/adapter/mcp"
	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/felixgeelhaar/sitework/pkg/observability"
)

const serverName = "sitework-mcp"

// NewServer registers the construction tools and resources on a new server.
func NewServer(cfg *config.Config, cliApp *cli.App, logger *slog.Logger, metrics observability.Metrics) (*mcpgo.Server, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cliApp == nil:
		return nil, errors.New("CLI app is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	version := cfg.AppVersion
	if version == "" {
		version = cli.CurrentBuild().Version
	}
	srv := mcpgo.NewServer(mcpgo.ServerInfo{
		Name:         serverName,
		Version:      version,
		Capabilities: mcpgo.Capabilities{Tools: true, Resources: true},
	})

	deps := mcp.ToolDependencies{App: cliApp, Logger: logger.With("component", "mcp"), Metrics: metrics}
	if err := mcp.RegisterTools(srv, deps); err != nil {
		return nil, err
	}
	if err := mcp.RegisterResources(srv, deps); err != nil {
		return nil, err
	}
	return srv, nil
}

// Serve listens on cfg.MCPAddr until ctx is canceled.
func Serve(ctx context.Context, cfg *config.Config, cliApp *cli.App, logger *slog.Logger, metrics observability.Metrics) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv, err := NewServer(cfg, cliApp, logger, metrics)
	if err != nil {
		return err
	}

	logger.Info("mcp server listening", "addr", cfg.MCPAddr, "auth", cfg.MCPAuthToken != "")
	return mcpgo.ServeHTTPWithMiddleware(ctx, srv, cfg.MCPAddr, nil, mcpgo.WithMiddleware(middlewareStack(cfg, logger)...))
}

// middlewareStack puts bearer auth in front of the default stack when a
// token is configured.
func middlewareStack(cfg *config.Config, logger *slog.Logger) []middleware.Middleware {
	log := slogAdapter{logger}
	stack := middleware.DefaultStack(log)
	if cfg.MCPAuthToken == "" {
		logger.Warn("MCP_AUTH_TOKEN not set; MCP requests are unauthenticated")
		return stack
	}

	tokens := middleware.StaticTokens(map[string]*middleware.Identity{
		cfg.MCPAuthToken: {ID: "site-office", Name: "site-office"},
	})
	auth := middleware.Auth(middleware.BearerTokenAuthenticator(tokens), middleware.WithAuthLogger(log))
	return append([]middleware.Middleware{auth}, stack...)
}

// slogAdapter satisfies the mcp-go middleware logger with slog.
type slogAdapter struct {
	*slog.Logger
}

func (a slogAdapter) Debug(msg string, fields ...middleware.Field) { a.log(slog.LevelDebug, msg, fields) }
func (a slogAdapter) Info(msg string, fields ...middleware.Field)  { a.log(slog.LevelInfo, msg, fields) }
func (a slogAdapter) Warn(msg string, fields ...middleware.Field)  { a.log(slog.LevelWarn, msg, fields) }
func (a slogAdapter) Error(msg string, fields ...middleware.Field) { a.log(slog.LevelError, msg, fields) }

func (a slogAdapter) log(level slog.Level, msg string, fields []middleware.Field) {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	a.Logger.LogAttrs(context.Background(), level, msg, attrs...)
}
