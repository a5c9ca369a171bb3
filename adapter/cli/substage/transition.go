package substage

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/sitework/adapter/cli"
	"github.com/felixgeelhaar/sitework/internal/construction/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type transitionFunc func(ctx context.Context, app *cli.App, id uuid.UUID, day time.Time) (*commands.TransitionResult, error)

// newTransitionCmd builds start, finish and reset, which differ only in
// the handler they call.
func newTransitionCmd(use, short string, run transitionFunc) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   use + " [substage-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := cli.GetApp()
			if err != nil {
				return err
			}
			substageID, err := cli.ParseID(args[0], "sub-stage")
			if err != nil {
				return err
			}
			day, err := cli.ParseDay(date)
			if err != nil {
				return err
			}

			result, err := run(cmd.Context(), app, substageID, day)
			if err != nil {
				return fmt.Errorf("failed to %s sub-stage: %w", use, err)
			}

			out := cmd.OutOrStdout()
			if cli.JSONOutput() {
				return cli.PrintJSON(out, result)
			}
			fmt.Fprintf(out, "Sub-stage %s: %s -> %s\n", result.SubstageID, result.From.Label(), result.To.Label())
			fmt.Fprintf(out, "  stage: %s\n", result.StageStatus.Label())
			fmt.Fprintf(out, "  building: %s\n", result.BuildingStatus.Label())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "transition date (YYYY-MM-DD), defaults to today")
	return cmd
}

var startCmd = newTransitionCmd("start", "Start work on a sub-stage",
	func(ctx context.Context, app *cli.App, id uuid.UUID, day time.Time) (*commands.TransitionResult, error) {
		return app.StartSubstage.Handle(ctx, commands.StartSubstageCommand{SubstageID: id, Today: day, CorrelationID: cli.CorrelationID(ctx)})
	})

var finishCmd = newTransitionCmd("finish", "Finish an ongoing sub-stage",
	func(ctx context.Context, app *cli.App, id uuid.UUID, day time.Time) (*commands.TransitionResult, error) {
		return app.FinishSubstage.Handle(ctx, commands.FinishSubstageCommand{SubstageID: id, Today: day, CorrelationID: cli.CorrelationID(ctx)})
	})

var resetCmd = newTransitionCmd("reset", "Return an ongoing sub-stage to not started",
	func(ctx context.Context, app *cli.App, id uuid.UUID, day time.Time) (*commands.TransitionResult, error) {
		return app.ResetSubstage.Handle(ctx, commands.ResetSubstageCommand{SubstageID: id, Today: day, CorrelationID: cli.CorrelationID(ctx)})
	})
