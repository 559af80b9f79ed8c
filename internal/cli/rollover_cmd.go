package cli

import (
	"fmt"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/tracker"

	"github.com/spf13/cobra"
)

func newRolloverCmd(app *App) *cobra.Command {
	var manual bool

	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Commit the daily buffer into the monthly history",
		Long: "Runs the same check the service runs on every request: a buffer from an earlier day\n" +
			"is committed under its own date, and after the cutoff hour today is rolled over once.\n" +
			"With --manual today is ended regardless of the hour, like the End Day button.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.load(cmd.Context())
			if err != nil {
				return err
			}

			var res *tracker.RolloverResult
			if manual {
				res, err = services.Tracker.EndDay(cmd.Context(), nil)
			} else {
				res, err = services.Tracker.Tick(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("rollover: %w", err)
			}

			out := cmd.OutOrStdout()
			switch {
			case res == nil:
				fmt.Fprintln(out, "Nothing to roll over")
			case res.Skipped:
				fmt.Fprintf(out, "%s already rolled over, nothing to add\n", history.FormatDay(res.Date))
			default:
				fmt.Fprintf(out, "Rolled over %s (%s): %.3f\n", history.FormatDay(res.Date), res.Trigger, res.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&manual, "manual", false, "End today even before the cutoff hour")

	return cmd
}
