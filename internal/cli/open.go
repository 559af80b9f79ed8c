package cli

import (
	"context"
	"fmt"

	"github.com/2beens/dailyscore/internal/config"
	"github.com/2beens/dailyscore/internal/csvstore"
	"github.com/2beens/dailyscore/internal/hourslog"
	"github.com/2beens/dailyscore/internal/score"
	"github.com/2beens/dailyscore/internal/telemetry/metrics"
	"github.com/2beens/dailyscore/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
)

// OpenFiles opens the CSV files named by the config, with "now" taken in the
// configured reference time zone.
func OpenFiles(ctx context.Context, env, configPath string) (*Services, error) {
	return openFiles(nil)(ctx, env, configPath)
}

func openFiles(clock tracker.Clock) Opener {
	return func(ctx context.Context, env, configPath string) (*Services, error) {
		cfg, err := config.Load(env, configPath)
		if err != nil {
			return nil, err
		}

		if clock == nil {
			loc, err := cfg.Location()
			if err != nil {
				return nil, err
			}
			clock = tracker.NewZoneClock(loc)
		}

		// nothing scrapes a one-shot command, the counters only satisfy the services
		metricsManager := metrics.NewManager("dailyscore", "cli", prometheus.NewRegistry())
		store := csvstore.NewStore()

		activityTracker, err := tracker.New(ctx, tracker.Params{
			Repo:           tracker.NewFileRepo(store, cfg.DailyPath(), cfg.MonthlyPath()),
			Clock:          clock,
			Catalog:        score.DefaultCatalog(),
			Metrics:        metricsManager,
			CutoffHour:     cfg.RolloverHour,
			ChartStartHour: cfg.ChartStartHour,
		})
		if err != nil {
			return nil, fmt.Errorf("open activity files: %w", err)
		}

		hours, err := hourslog.NewService(
			ctx,
			hourslog.NewFileRepo(store, cfg.HoursPath()),
			clock,
			metricsManager,
			cfg.PolynomialDegree,
		)
		if err != nil {
			return nil, fmt.Errorf("open hours log: %w", err)
		}

		return &Services{
			Tracker: activityTracker,
			Hours:   hours,
		}, nil
	}
}
