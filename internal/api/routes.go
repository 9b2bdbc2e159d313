package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterHandlers mounts every route. human guards the recommendation
// endpoint; pass nil to leave it open.
func RegisterHandlers(e *echo.Echo, h *Handler, s *Server, human echo.MiddlewareFunc, verificationHeader string) {
	// preflight requests never match a route, so CORS sits on the root
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Request().URL.Path, "/api/")
		},
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, verificationHeader},
	}))

	e.GET("/", h.HandleIndex)
	e.GET("/healthz", h.HandleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var guards []echo.MiddlewareFunc
	if human != nil {
		guards = append(guards, human)
	}
	apiGroup := e.Group("/api")
	apiGroup.POST("/recommend", s.Recommend, guards...)
	apiGroup.GET("/cases", s.ListCases)
	apiGroup.GET("/scenarios", s.ListScenarios)
}
