// Package router defines how HTTP routes are registered for the API.
// Registration is split by area: auth, topics and resources each get their
// own file, all hanging protected endpoints off a shared /v1 group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
