package components

import (
	"context"
	"errors"
	"log/slog"

	"bistro/internal/infra/floorplan"
	"bistro/internal/pkg/clock"
	"bistro/internal/pkg/config"
	"bistro/internal/pkg/telemetry"
	"bistro/internal/scheduler"
	"bistro/internal/usecase/commands"
	"bistro/internal/usecase/queries"
	"bistro/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewEngine,
		func(e *commands.Engine) commands.ReservationCommands { return e },
		func(e *commands.Engine) commands.Sweeper { return e },
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
	),
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(NewReconciler),
	fx.Invoke(RescanOnFloorplanReload),
)

// RescanOnFloorplanReload lets the next sweep seat waiting parties on tables a reload added.
func RescanOnFloorplanReload(fp *floorplan.Floorplan, e *commands.Engine) {
	fp.OnReload(e.RescanWaiting)
}

func NewReconciler(
	cfg config.Config,
	store shared.ReservationStore,
	sweeper commands.Sweeper,
	clk clock.Clock,
	policy shared.Policy,
	metrics *telemetry.Metrics,
) *scheduler.Reconciler {
	return scheduler.NewReconciler(store, sweeper, clk, policy, metrics, cfg.Scheduler.Interval)
}

// RunReconciler ticks in the background for the lifetime of the app.
func RunReconciler(lc fx.Lifecycle, cfg config.Config, r *scheduler.Reconciler) {
	if !cfg.Scheduler.Enabled {
		slog.Info("reconciler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					slog.Error("reconciler exited", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
