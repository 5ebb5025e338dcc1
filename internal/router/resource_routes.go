package router

import (
	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/handler"
)

// RegisterResources registers the resource endpoints. Creation and listing
// are nested under the owning topic; everything addressed by resource id
// lives under /v1/resources.
func RegisterResources(e *echo.Echo, r *handler.ResourceHandler, sessionAuth echo.MiddlewareFunc) {
	topics := e.Group("/v1/topics", sessionAuth)
	topics.POST("/:id/resources", r.Add)
	topics.GET("/:id/resources", r.List)

	res := e.Group("/v1/resources", sessionAuth)
	res.GET("/:id", r.GetOne)
	res.GET("/:id/download", r.Download)
	res.PATCH("/:id", r.Update)
	res.DELETE("/:id", r.Delete)
	res.POST("/:id/read", r.ToggleRead)
	res.POST("/:id/rate", r.Rate)
}
