package bootstrap

import (
	"log/slog"

	"bistro/internal/handler/middleware"
	"bistro/internal/pkg/config"
	"bistro/internal/pkg/telemetry"

	"go.uber.org/fx"
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		NewLogger,
		func(l *middleware.Logger) *slog.Logger {
			return l.GetSlogLogger()
		},
		func(cfg config.Config) *telemetry.Metrics {
			return telemetry.NewMetrics(cfg.Metrics)
		},
	),
)

func NewLogger(cfg config.Config) *middleware.Logger {
	return middleware.NewLogger(cfg.Log)
}
