package components

import (
	"bistro/internal/handler"
	"bistro/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
	),
	fx.Invoke(handler.NewRouter),
)
