package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderflow/intake/internal/infrastructure/monitoring/logging"
)

// NewRouter assembles the gin engine: middleware, API routes, health, and an
// optional metrics endpoint.
func NewRouter(h *Handler, logger logging.Logger, mode string, metricsHandler http.Handler) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), RequestLogger(logger), CORS())

	r.GET("/healthz", h.Health)
	r.GET("/readyz", h.Health)
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		intakeRoutes := v1.Group("/intake")
		{
			intakeRoutes.POST("/email", h.ProcessEmail)
			intakeRoutes.POST("/upload", h.UploadEmail)
		}

		orders := v1.Group("/orders")
		{
			orders.GET("", h.ListOrders)
			orders.POST("/merge", h.MergeOrders)
			orders.GET("/:id", h.GetOrder)
			orders.POST("/:id/approve", h.ApproveOrder)
		}

		ins := v1.Group("/insights")
		{
			ins.GET("/common-products", h.CommonProducts)
			ins.GET("/customer-patterns", h.CustomerPatterns)
			ins.GET("/time-based", h.TimeBased)
			ins.GET("/export", h.ExportInsights)
		}
	}

	return r
}
