package http

import (
	"net/http"

	"github.com/cukaracha/hrspwr-sub000/internal/config"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(handler *Handler, cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	if cfg.Observability.TraceEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(loggingMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	router.POST("/authorize", handler.Authorize)

	if handler.lookupService != nil {
		protected := router.Group("/lookup", requireAuthorization(handler.authorizerService))
		protected.GET("/vin/:vin", handler.DecodeVIN)
		protected.GET("/categories/:vehicleId", handler.Categories)
	}

	return router
}
