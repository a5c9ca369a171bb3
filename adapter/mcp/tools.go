package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/pkg/observability"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App     *cli.App
	Logger  *slog.Logger
	Metrics observability.Metrics
}

// RegisterTools registers the construction tools and the service tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}

	t := &toolset{deps: deps}

	srv.Tool("cli.version").
		Description("Get build information for the running server").
		Handler(func(context.Context, struct{}) (cli.BuildInfo, error) {
			return cli.CurrentBuild(), nil
		})

	srv.Tool("construction.progress").
		Description("Get the progress of a project, or of one building with its stages and sub-stages").
		Handler(timed(t, "progress", t.progress))

	srv.Tool("construction.substage.start").
		Description("Start work on a sub-stage").
		Handler(timed(t, "substage.start", t.start))

	srv.Tool("construction.substage.finish").
		Description("Finish an ongoing sub-stage").
		Handler(timed(t, "substage.finish", t.finish))

	srv.Tool("construction.substage.reset").
		Description("Return an ongoing sub-stage to not started").
		Handler(timed(t, "substage.reset", t.reset))

	srv.Tool("construction.substage.cost").
		Description("Get the labor and material cost of a sub-stage").
		Handler(timed(t, "substage.cost", t.cost))

	srv.Tool("construction.payments.preview").
		Description("Preview the payment batch of a project without paying").
		Handler(timed(t, "payments.preview", t.previewPayments))

	srv.Tool("construction.materials.list").
		Description("List materials with their current price").
		Handler(timed(t, "materials.list", t.listMaterials))

	return nil
}

// timed wraps a tool handler with timing, counting and failure logging.
func timed[I, O any](t *toolset, operation string, fn func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	operation = "mcp." + operation
	return func(ctx context.Context, input I) (O, error) {
		ctx = observability.WithRequestID(ctx, "")
		return observability.TimeOperation(ctx, t.deps.Logger, t.deps.Metrics, operation, func() (O, error) {
			return fn(ctx, input)
		})
	}
}
