package router

import (
	"github.com/labstack/echo/v4"

	"rentline/internal/adapter/api/handler"
	"rentline/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up the realtime connection endpoint
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, identity *middleware.IdentityMiddleware) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket, identity.Authenticate)
}
