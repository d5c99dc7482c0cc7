package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"dispatch/internal/pkg/metrics"
)

// NewRouter builds the echo instance with all API routes registered.
func NewRouter(server *Server, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	api := e.Group("/api/v1")
	api.POST("/orders", server.CreateOrder)
	api.POST("/vehicles", server.CreateVehicle)
	api.POST("/routes/optimize", server.OptimizeRoutes)
	api.POST("/adjustments", server.SubmitAdjustment)
	api.GET("/adjustments/:id", server.GetAdjustmentResult)
	api.GET("/analytics/daily", server.GetDailySummary)
	api.GET("/analytics/weekly", server.GetWeeklyTrend)
	api.GET("/analytics/drivers/:id", server.GetDriverPerformance)

	return e
}
