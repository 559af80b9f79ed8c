package cli

import (
	"context"
	"errors"
	"io"

	"github.com/2beens/dailyscore/internal/history"
	"github.com/2beens/dailyscore/internal/tracker"
	"github.com/2beens/dailyscore/internal/trend"

	"github.com/spf13/cobra"
)

type TrackerService interface {
	Tick(ctx context.Context) (*tracker.RolloverResult, error)
	EndDay(ctx context.Context, sess *tracker.Session) (*tracker.RolloverResult, error)
	ExportMonthly(w io.Writer) error
}

type HoursService interface {
	Rows() []history.DayTotal
	Trend() (*trend.Analysis, error)
}

// Services are the domain services the data commands work on.
type Services struct {
	Tracker TrackerService
	Hours   HoursService
}

// Opener wires the services for the given environment and config file.
type Opener func(ctx context.Context, env, configPath string) (*Services, error)

// App holds what the scorectl commands share. Services are opened on first
// use, so commands that need no data (hash-key) run without a config file.
type App struct {
	Open Opener

	env        string
	configPath string
	services   *Services
}

func (app *App) load(ctx context.Context) (*Services, error) {
	if app.services != nil {
		return app.services, nil
	}
	if app.Open == nil {
		return nil, errors.New("no data source configured")
	}

	services, err := app.Open(ctx, app.env, app.configPath)
	if err != nil {
		return nil, err
	}
	app.services = services
	return services, nil
}

// NewRootCmd creates the top-level "scorectl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "scorectl",
		Short:         "Maintenance tool for the daily score CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&app.env, "env", "development", "config environment [prod | production | dev | development]")
	root.PersistentFlags().StringVar(&app.configPath, "config", "./config.toml", "path for the TOML config file")

	root.AddCommand(
		newRolloverCmd(app),
		newExportCmd(app),
		newFillGapsCmd(app),
		newTrendCmd(app),
		newHashKeyCmd(),
	)

	return root
}
