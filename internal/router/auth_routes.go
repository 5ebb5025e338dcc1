package router

import (
	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/handler"
)

// RegisterAuth registers the authentication endpoints. Credential routes
// live under /v1/auth behind the rate limiter; the session-scoped account
// endpoints (me, deactivate) live under /v1 behind the session middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, sessionAuth, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", rateLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password/:token", a.ResetPassword)
	g.POST("/reactivate", a.Reactivate)

	auth := e.Group("/v1", sessionAuth)
	auth.GET("/me", a.Me)
	auth.POST("/auth/deactivate", a.Deactivate)
}
