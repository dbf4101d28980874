package router

import (
	"github.com/labstack/echo/v4"

	"rentline/internal/adapter/api/handler"
	"rentline/internal/adapter/api/middleware"
)

// SetupNegotiationRouter sets up the contract negotiation routes
func SetupNegotiationRouter(e *echo.Echo, negotiationHandler *handler.NegotiationHandler, identity *middleware.IdentityMiddleware) {
	group := e.Group("/v1/negotiations")
	group.Use(identity.Authenticate)

	// Room management
	group.POST("", negotiationHandler.CreateRoom)      // POST /v1/negotiations - Create or reuse a room
	group.GET("/:id", negotiationHandler.GetRoom)      // GET /v1/negotiations/:id - Get one room
	group.GET("/:id/can-send", negotiationHandler.CanSend) // GET /v1/negotiations/:id/can-send - Presence check

	// Message management
	group.POST("/:id/messages", negotiationHandler.SendMessage) // POST /v1/negotiations/:id/messages
	group.GET("/:id/messages", negotiationHandler.ListMessages) // GET /v1/negotiations/:id/messages

	// Special-terms window protocol
	group.POST("/:id/start-point", negotiationHandler.SetStartPoint) // POST /v1/negotiations/:id/start-point
	group.POST("/:id/end-request", negotiationHandler.RequestEnd)    // POST /v1/negotiations/:id/end-request
	group.POST("/:id/end-accept", negotiationHandler.AcceptEnd)      // POST /v1/negotiations/:id/end-accept
	group.POST("/:id/end-reject", negotiationHandler.RejectEnd)      // POST /v1/negotiations/:id/end-reject
}
