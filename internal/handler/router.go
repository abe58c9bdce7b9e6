package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"bistro/internal/handler/api"
	"bistro/internal/handler/middleware"
	"bistro/internal/pkg/config"
	"bistro/internal/pkg/telemetry"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, metrics *telemetry.Metrics, reservationHandler *api.ReservationHandler) {
	setupMiddleware(engine, cfg, logger, metrics)
	setupRoutes(engine, metrics, reservationHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *middleware.Logger, metrics *telemetry.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(logger.LoggingMiddleware(metrics))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, metrics *telemetry.Metrics, h *api.ReservationHandler) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		reservations := apiGroup.Group("/reservations")
		addRoutes(reservations, []route{
			{Method: http.MethodPost, Path: "", Handler: h.Create},
			{Method: http.MethodGet, Path: "/alternatives", Handler: h.Alternatives},
			{Method: http.MethodGet, Path: "/code/:code", Handler: h.GetByCode},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Get},
			{Method: http.MethodPost, Path: "/:id/arrive", Handler: h.Arrive},
			{Method: http.MethodPost, Path: "/:id/finish", Handler: h.Finish},
			{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Cancel},
		})

		// staff-facing; gated upstream
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/staff/reservations", Handler: h.CreateStaff},
			{Method: http.MethodGet, Path: "/subscribers/:id/reservations", Handler: h.ListBySubscriber},
			{Method: http.MethodGet, Path: "/dates/:date/waitlist", Handler: h.Waitlist},
			{Method: http.MethodGet, Path: "/dates/:date/reservations", Handler: h.ListByDate},
			{Method: http.MethodGet, Path: "/tables", Handler: h.Tables},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
