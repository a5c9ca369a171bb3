package project

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	internalApp "github.com/felixgeelhaar/sitework/internal/app"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/template"
	"github.com/felixgeelhaar/sitework/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

func setupApp(t *testing.T) (*internalApp.Container, string) {
	t.Helper()
	dir := t.TempDir()
	reports := filepath.Join(dir, "reports")
	cfg := &config.Config{
		AppEnv:           "test",
		DatabaseDriver:   "auto",
		SQLitePath:       filepath.Join(dir, "data.db"),
		ReportDir:        reports,
		ProgressCacheTTL: time.Minute,
	}
	c, err := internalApp.NewContainer(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	cli.SetApp(cli.NewApp(c))
	t.Cleanup(func() { cli.SetApp(nil) })
	return c, reports
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

func TestCreateAndList(t *testing.T) {
	c, _ := setupApp(t)

	out, err := run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "No projects yet")

	out, err = run(t, createCmd, "Riverside")
	require.NoError(t, err)
	assert.Contains(t, out, "Project created")

	projects, err := c.ListProjects.Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)

	out, err = run(t, listCmd)
	require.NoError(t, err)
	assert.Contains(t, out, projects[0].ID.String())
	assert.Contains(t, out, "0 building(s)")

	_, err = run(t, createCmd, "")
	assert.Error(t, err)
}

// TestProgressAndPay finishes the first sub-stage of a default building and
// pays it through the CLI.
func TestProgressAndPay(t *testing.T) {
	c, reports := setupApp(t)
	ctx := context.Background()

	for _, name := range []string{"Cement", "Rebar", "Bricks"} {
		_, err := c.CreateMaterial.Handle(ctx, commands.CreateMaterialCommand{
			Name: name, Unit: "unit", Price: decimal.NewFromInt(5), EffectiveDate: monday,
		})
		require.NoError(t, err)
	}
	project, err := c.CreateProject.Handle(ctx, commands.CreateProjectCommand{Name: "Riverside"})
	require.NoError(t, err)
	building, err := c.CreateBuilding.Handle(ctx, commands.CreateBuildingCommand{
		ProjectID: project.ProjectID, Name: "House 1", Template: template.Default(), Today: monday,
	})
	require.NoError(t, err)
	progress, err := c.BuildingProgress.Handle(ctx, queries.GetBuildingProgressQuery{BuildingID: building.BuildingID})
	require.NoError(t, err)
	excavation := progress.Stages[0].Substages[0].ID
	_, err = c.StartSubstage.Handle(ctx, commands.StartSubstageCommand{SubstageID: excavation, Today: monday})
	require.NoError(t, err)
	_, err = c.FinishSubstage.Handle(ctx, commands.FinishSubstageCommand{SubstageID: excavation, Today: monday})
	require.NoError(t, err)

	id := project.ProjectID.String()

	out, err := run(t, progressCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Riverside")
	assert.Contains(t, out, "House 1")

	payDate = "2024-04-05"
	t.Cleanup(func() { payPreview, payDate = false, "" })

	payPreview = true
	out, err = run(t, payCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Payments for Riverside (2024-04-05)")
	assert.Contains(t, out, "Excavation")
	assert.Contains(t, out, "1200.00")
	assert.NoDirExists(t, reports, "preview writes no report")

	payPreview = false
	out, err = run(t, payCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Paid 1 sub-stage(s)")

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = run(t, payCmd, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to pay in Riverside")
}

func TestPrintJSONPreview(t *testing.T) {
	c, _ := setupApp(t)
	project, err := c.CreateProject.Handle(context.Background(), commands.CreateProjectCommand{Name: "Empty"})
	require.NoError(t, err)

	require.NoError(t, cli.Root().PersistentFlags().Set("json", "true"))
	t.Cleanup(func() { _ = cli.Root().PersistentFlags().Set("json", "false") })
	payPreview = true
	t.Cleanup(func() { payPreview = false })

	out, err := run(t, payCmd, project.ProjectID.String())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Empty", doc["project"])
	assert.Equal(t, "0.00", doc["grand_total"])
}
