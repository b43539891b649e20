// Package http assembles the HTTP server of the calling coach.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/auth"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/metrics"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/service"
	v1 "github.com/maddoxeriksen-12/Calling-Coach/internal/transport/http/v1"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/transport/http/webhook"
)

// NewServer creates and configures the HTTP server.
// It serves the client API, the voice platform webhook and Prometheus metrics.
func NewServer(svc *service.Service, jwtSecret string, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	webhookHandler := webhook.NewHandler(svc)

	// Register Routes
	v1Handler.RegisterRoutes(e, auth.Middleware(jwtSecret))
	webhookHandler.RegisterRoutes(e)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	return e
}
