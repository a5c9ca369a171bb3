package mcp

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		AppEnv:           "test",
		AppVersion:       "1.4.0",
		DatabaseDriver:   "auto",
		SQLitePath:       filepath.Join(dir, "data.db"),
		ReportDir:        filepath.Join(dir, "reports"),
		ProgressCacheTTL: time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := app.NewContainer(context.Background(), cfg, logger, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	srv, err := NewServer(cfg, cli.NewApp(container), logger, container.Metrics)
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()
	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.NotEmpty(t, tools)

	_, err = NewServer(nil, cli.NewApp(container), logger, nil)
	assert.Error(t, err)
	_, err = NewServer(cfg, nil, logger, nil)
	assert.Error(t, err)
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := slogAdapter{slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}

	l.Info("request", middleware.Field{Key: "method", Value: "tools/call"})
	l.Warn("slow", middleware.Field{Key: "ms", Value: 1200})
	l.Debug("detail")

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=request method=tools/call")
	assert.Contains(t, out, "level=WARN msg=slow ms=1200")
	assert.Contains(t, out, "detail")
}

func TestMiddlewareStack(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	open := middlewareStack(&config.Config{}, logger)
	guarded := middlewareStack(&config.Config{MCPAuthToken: "s3cret"}, logger)

	assert.NotEmpty(t, open)
	assert.Len(t, guarded, len(open)+1)
}
