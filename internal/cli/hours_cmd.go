package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/trend"

	"github.com/spf13/cobra"
)

func newFillGapsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "fill-gaps",
		Short: "List the hours log with every missing day through today filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.load(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tHOURS\tSCORE")
			for _, row := range services.Hours.Rows() {
				hours := row.Hours
				if hours == "" {
					hours = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\n", history.FormatDay(row.Date), hours, row.Score)
			}
			return tw.Flush()
		},
	}
}

func newTrendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trend",
		Short: "Fit the linear and polynomial trend to the hours log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := app.load(cmd.Context())
			if err != nil {
				return err
			}

			analysis, err := services.Hours.Trend()
			if err != nil {
				if errors.Is(err, trend.ErrNotEnoughPoints) {
					return fmt.Errorf("trend needs more logged days: %w", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Days: %d (%s .. %s)\n",
				len(analysis.Dates), analysis.Dates[0], analysis.Dates[len(analysis.Dates)-1])
			for _, fit := range []*trend.Fit{analysis.Linear, analysis.Polynomial} {
				if fit == nil {
					continue
				}
				fmt.Fprintf(out, "%-10s R2 %.4f  coefficients %s\n", fit.Name, fit.R2, formatCoefficients(fit.Coefficients))
			}
			return nil
		},
	}
}

func formatCoefficients(cs []float64) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = fmt.Sprintf("%.6g", c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
