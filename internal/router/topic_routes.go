package router

import (
	"github.com/labstack/echo/v4"

	"github.com/readshelf/readshelf/internal/handler"
)

// RegisterTopics registers the topic endpoints under /v1/topics. All of
// them require a session. Static segments (public, my-topics, trending,
// invites) are registered alongside the :id routes; echo matches static
// paths before parameters, so /topics/public never collides with
// /topics/:id.
func RegisterTopics(e *echo.Echo, t *handler.TopicHandler, sessionAuth echo.MiddlewareFunc) {
	g := e.Group("/v1/topics", sessionAuth)

	g.POST("", t.Create)
	g.GET("/public", t.BrowsePublic)
	g.GET("/my-topics", t.MyTopics)
	g.GET("/trending", t.Trending)
	g.GET("/:id", t.Details)
	g.DELETE("/:id", t.Delete)

	g.POST("/:id/subscribe", t.Subscribe)
	g.PATCH("/:id/seriousness", t.UpdateSeriousness)

	g.POST("/:id/invite", t.Invite)
	g.GET("/invites/pending", t.PendingInvites)
	g.POST("/invites/:id/respond", t.RespondInvite)
}
