package cli

import (
	"context"
	"fmt"

	"bistro/cmd/bootstrap"
	"bistro/internal/pkg/config"
	"bistro/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a single reconciliation pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			cfg.Floorplan.Watch = false

			var reconciler *scheduler.Reconciler
			app := fx.New(
				bootstrap.CoreModule(cfg),
				fx.Populate(&reconciler),
				fx.NopLogger,
			)
			if err := app.Start(cmd.Context()); err != nil {
				return err
			}
			defer func() { _ = app.Stop(context.Background()) }()

			report := reconciler.Tick(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "no-shows: %d, dining expired: %d, promoted: %d, failures: %d\n",
				len(report.NoShows), len(report.DiningExpired), len(report.Promoted), report.Failures)
			if report.Failures > 0 {
				return fmt.Errorf("sweep finished with %d failures", report.Failures)
			}
			return nil
		},
	}
}
