package bootstrap

import (
	"bistro/cmd/bootstrap/components"
	"bistro/internal/pkg/config"

	"go.uber.org/fx"
)

// CoreModule wires everything but the HTTP transport and the background scheduler.
// The configuration is supplied by the caller so that driver choices shape the graph.
func CoreModule(cfg config.Config) fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(NewPolicy),
		LoggerModule,
		components.FloorplanModule,
		components.StoreModule(cfg.Store.Driver),
		components.LockModule(cfg.Store.LockDriver),
		components.NotifierModule(cfg.Store.NotifierDriver),
		components.UseCaseModule,
		components.SchedulerModule,
	}
	if cfg.Store.Driver == components.DriverPostgres {
		opts = append(opts, DBModule)
	}
	return fx.Options(opts...)
}

// ServerModule is the full application served by `bistro serve`.
func ServerModule(cfg config.Config) fx.Option {
	return fx.Options(
		CoreModule(cfg),
		components.HandlerModule,
		fx.Invoke(components.RunReconciler),
	)
}
