package project

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/felixgeelhaar/sitework/internal/construction/application/queries"
	"github.com/felixgeelhaar/sitework/internal/construction/infrastructure/report"
	"github.com/spf13/cobra"
)

var (
	payPreview bool
	payDate    string
)

var payCmd = &cobra.Command{
	Use:   "pay [project-id]",
	Short: "Pay every finished sub-stage of a project",
	Long: `Collect every finished sub-stage of a project into one payment batch,
write the YAML payment report and mark the work as paid.

Examples:
  sitework project pay 6f1c... --preview
  sitework project pay 6f1c... --date 2024-05-31`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.GetApp()
		if err != nil {
			return err
		}
		projectID, err := cli.ParseID(args[0], "project")
		if err != nil {
			return err
		}
		day, err := cli.ParseDay(payDate)
		if err != nil {
			return err
		}
		printed := day
		if printed.IsZero() {
			printed = time.Now()
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if payPreview {
			batch, err := app.PreviewPayments.Handle(ctx, queries.PreviewPaymentsQuery{ProjectID: projectID})
			if err != nil {
				return fmt.Errorf("failed to preview payments: %w", err)
			}
			doc := report.NewDocument(batch, printed)
			if cli.JSONOutput() {
				return cli.PrintJSON(out, doc)
			}
			cli.PrintPaymentBatch(out, doc)
			return nil
		}

		result, err := app.PayProject.Handle(ctx, commands.PayProjectCommand{
			ProjectID:     projectID,
			Today:         day,
			CorrelationID: cli.CorrelationID(ctx),
		})
		if err != nil {
			return fmt.Errorf("failed to pay project: %w", err)
		}

		doc := report.NewDocument(result.Batch, printed)
		if cli.JSONOutput() {
			return cli.PrintJSON(out, map[string]any{
				"paid":        result.PaidCount,
				"grand_total": result.GrandTotal.StringFixed(2),
				"report":      result.ReportPath,
				"batch":       doc,
			})
		}
		cli.PrintPaymentBatch(out, doc)
		if result.PaidCount > 0 {
			fmt.Fprintf(out, "Paid %d sub-stage(s). Report: %s\n", result.PaidCount, result.ReportPath)
		}
		return nil
	},
}

func init() {
	payCmd.Flags().BoolVar(&payPreview, "preview", false, "show the batch without paying")
	payCmd.Flags().StringVar(&payDate, "date", "", "payment date (YYYY-MM-DD), defaults to today")
}
