package material

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	internalApp "github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/internal/construction/domain"
	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		AppEnv:           "test",
		DatabaseDriver:   "auto",
		SQLitePath:       filepath.Join(dir, "data.db"),
		ReportDir:        filepath.Join(dir, "reports"),
		ProgressCacheTTL: time.Minute,
	}
	c, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	cli.SetApp(cli.NewApp(c))
	t.Cleanup(func() { cli.SetApp(nil) })
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestMaterialCommands(t *testing.T) {
	setupApp(t)

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No materials yet")

	createEffective = "2024-04-01"
	t.Cleanup(func() { createEffective = "" })
	out, err = run(t, createCmd, "Cement", "bag", "8.5")
	require.NoError(t, err)
	assert.Contains(t, out, "Material created: Cement")

	_, err = run(t, createCmd, "Sand", "t", "cheap")
	assert.ErrorContains(t, err, "invalid price")

	priceEffective = "2024-05-01"
	t.Cleanup(func() { priceEffective = "" })
	out, err = run(t, priceCmd, "Cement", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "Cement 9.00 per bag")

	out, err = run(t, showCmd, "Cement")
	require.NoError(t, err)
	assert.Contains(t, out, "current: 9.00")
	assert.Contains(t, out, "2024-04-01 -> 2024-04-30")
	assert.Contains(t, out, "2024-05-01 -> open")

	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Cement")
	assert.Contains(t, out, "9.00")

	_, err = run(t, showCmd, "Steel")
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}
