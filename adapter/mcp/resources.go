package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterResources registers MCP resources that expose construction data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App

	srv.Resource("sitework://projects").
		Name("Projects").
		Description("All projects with their building progress").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListProjects == nil {
				return nil, fmt.Errorf("project listing requires database connection")
			}
			projects, err := app.ListProjects.Handle(ctx)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, projects)
		})

	srv.Resource("sitework://materials").
		Name("Materials").
		Description("Material catalog with price history").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if app == nil || app.ListMaterials == nil {
				return nil, fmt.Errorf("material listing requires database connection")
			}
			materials, err := app.ListMaterials.Handle(ctx)
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, materials)
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
